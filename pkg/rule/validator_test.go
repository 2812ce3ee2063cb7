package rule_test

import (
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/yeisme/ingestvault/pkg/rule"
)

type serverSection struct {
	Host string `rule:"required"`
	Port int    `rule:"min=1,max=65535"`
}

// TestValidateStruct rule 标签驱动的结构体校验.
func TestValidateStruct(t *testing.T) {
	if err := rule.ValidateStruct(serverSection{Host: "0.0.0.0", Port: 8080}); err != nil {
		t.Errorf("valid section rejected: %v", err)
	}

	if err := rule.ValidateStruct(serverSection{Port: 8080}); err == nil {
		t.Error("missing host should fail")
	}

	if err := rule.ValidateStruct(serverSection{Host: "0.0.0.0", Port: 0}); err == nil {
		t.Error("port 0 should fail")
	}
}

// TestValidateVar 单值校验, 与标签路径参数用法一致.
func TestValidateVar(t *testing.T) {
	if err := rule.ValidateVar("archived", "required,min=1,max=255"); err != nil {
		t.Errorf("valid tag rejected: %v", err)
	}

	if err := rule.ValidateVar("", "required,min=1,max=255"); err == nil {
		t.Error("empty tag should fail")
	}
}

// TestErrors 校验错误展开为字段映射.
func TestErrors(t *testing.T) {
	err := rule.ValidateStruct(serverSection{})
	if err == nil {
		t.Fatal("expected validation error")
	}

	fields := rule.Errors(err)
	if len(fields) != 2 {
		t.Errorf("got %d field errors, want 2: %v", len(fields), fields)
	}

	if _, ok := fields["Host"]; !ok {
		t.Errorf("Host error missing: %v", fields)
	}

	// 非校验错误返回 nil
	if got := rule.Errors(nil); got != nil {
		t.Errorf("Errors(nil) = %v", got)
	}
}

// TestRegisterValidation 自定义规则注册后即可在标签里使用.
func TestRegisterValidation(t *testing.T) {
	err := rule.RegisterValidation("no_spaces", func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}

		for _, r := range s {
			if r == ' ' {
				return false
			}
		}

		return true
	})
	if err != nil {
		t.Fatalf("RegisterValidation: %v", err)
	}

	if err := rule.ValidateVar("clickstream", "no_spaces"); err != nil {
		t.Errorf("value without spaces rejected: %v", err)
	}

	if err := rule.ValidateVar("click stream", "no_spaces"); err == nil {
		t.Error("value with space should fail")
	}
}

// TestRegisterAlias 别名等价于完整规则串.
func TestRegisterAlias(t *testing.T) {
	rule.RegisterAlias("tag_value", "required,min=1,max=255")

	if err := rule.ValidateVar("nightly", "tag_value"); err != nil {
		t.Errorf("valid value rejected: %v", err)
	}

	if err := rule.ValidateVar("", "tag_value"); err == nil {
		t.Error("empty value should fail")
	}
}
