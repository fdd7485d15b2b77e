// internal/service/promotion/infrastructure/rule/cel_engine.go
package rule

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/promotion/domain"
)

const maxCachedPrograms = 256

// CELRuleEngine 是 domain.RuleEngine 的 cel-go 实现。
// 管理员给营销码配置的适用规则是一段 CEL 表达式, 例如:
//
//	category == "aircraft-sale" && amount >= 2500
//
// 这是一个典型的适配器: 把第三方表达式引擎适配到我们自己的领域接口。
type CELRuleEngine struct {
	env *cel.Env

	mu       sync.RWMutex
	programs map[string]cel.Program
}

// NewCELRuleEngine 创建规则引擎, 预先声明规则里可见的全部变量。
func NewCELRuleEngine() (*CELRuleEngine, error) {
	env, err := cel.NewEnv(
		cel.Variable("category", cel.StringType),
		cel.Variable("tier", cel.StringType),
		cel.Variable("context", cel.StringType),
		cel.Variable("user_id", cel.StringType),
		cel.Variable("amount", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cel environment: %w", err)
	}
	return &CELRuleEngine{
		env:      env,
		programs: make(map[string]cel.Program),
	}, nil
}

// Eligible 实现 domain.RuleEngine。
// 空规则无条件通过; 规则编译失败或求值结果不是布尔值时返回错误,
// 由调用方决定拒绝(宁可错杀, 不可放行)。
func (e *CELRuleEngine) Eligible(ruleDefinition string, fact domain.Fact) (bool, error) {
	if ruleDefinition == "" {
		return true, nil
	}

	prg, err := e.compile(ruleDefinition)
	if err != nil {
		return false, err
	}

	out, _, err := prg.Eval(map[string]interface{}{
		"category": fact.Category,
		"tier":     fact.Tier,
		"context":  fact.Context,
		"user_id":  fact.UserID,
		"amount":   fact.Amount,
	})
	if err != nil {
		return false, fmt.Errorf("failed to evaluate promo rule: %w", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("promo rule must evaluate to bool, got %T", out.Value())
	}
	return result, nil
}

// compile 编译并缓存规则。缓存有上限, 写满后整体重置, 避免规则被频繁编辑时无限增长。
func (e *CELRuleEngine) compile(ruleDefinition string) (cel.Program, error) {
	e.mu.RLock()
	prg, ok := e.programs[ruleDefinition]
	e.mu.RUnlock()
	if ok {
		return prg, nil
	}

	ast, iss := e.env.Compile(ruleDefinition)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("invalid promo rule: %w", iss.Err())
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to build promo rule program: %w", err)
	}

	e.mu.Lock()
	if len(e.programs) >= maxCachedPrograms {
		e.programs = make(map[string]cel.Program)
	}
	e.programs[ruleDefinition] = prg
	e.mu.Unlock()
	return prg, nil
}
