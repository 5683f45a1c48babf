package core

import "breedcore/pkg/domain"

// NewDefaultRulesEngine returns a rules engine loaded with the standard
// breeding plan rules evaluated on every transaction commit.
func NewDefaultRulesEngine() *RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(StageTransitionRule())
	engine.Register(GestationWindowRule())
	return engine
}
