// Package rule 封装 go-playground/validator, 校验标签统一使用 `rule`.
package rule

import (
	"errors"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	inst *validator.Validate
	once sync.Once
)

// initValidator 复用 gin 的 validator 引擎, 不可用时新建.
func initValidator() {
	if engine := binding.Validator.Engine(); engine != nil {
		if v, ok := engine.(*validator.Validate); ok {
			inst = v
			inst.SetTagName("rule")

			return
		}
	}

	inst = validator.New()
	inst.SetTagName("rule")
}

func lazyInit() {
	once.Do(initValidator)
}

// Engine 返回全局 *validator.Validate.
func Engine() *validator.Validate {
	lazyInit()
	return inst
}

// RegisterValidation 注册自定义校验函数.
func RegisterValidation(tag string, fn validator.Func, opts ...bool) error {
	lazyInit()
	return inst.RegisterValidation(tag, fn, opts...)
}

// RegisterAlias 注册规则别名.
func RegisterAlias(alias, rules string) {
	lazyInit()
	inst.RegisterAlias(alias, rules)
}

// ValidateStruct 校验结构体的全部 rule 标签.
func ValidateStruct(s any) error {
	lazyInit()
	return inst.Struct(s)
}

// ValidateVar 按规则校验单个值, 例如 ValidateVar(tag, "required,max=255").
func ValidateVar(field any, tag string) error {
	lazyInit()
	return inst.Var(field, tag)
}

// ValidationErrors 字段名到可读错误信息的映射.
type ValidationErrors map[string]string

// Errors 把 validator 的错误展开为按字段的映射; 非校验错误返回 nil.
func Errors(err error) ValidationErrors {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	out := make(ValidationErrors, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Error()
	}

	return out
}
