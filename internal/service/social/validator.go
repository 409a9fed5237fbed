package social

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf16"

	"navbar_social/internal/dto/request"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

// FormValidator 弹窗表单校验器，错误信息按 locale 翻译
type FormValidator struct {
	validate *validator.Validate
	trans    ut.Translator
}

// NewFormValidator 创建表单校验器
// locale 支持 "en" 和 "zh"，其他值回退到英文
func NewFormValidator(locale string) (*FormValidator, error) {
	v := validator.New()

	// 报错信息使用 json tag（email）而不是结构体字段名（Email）
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("utf16max", utf16Max); err != nil {
		return nil, err
	}

	enT := en.New()
	uni := ut.New(enT, enT, zh.New())
	if locale != "zh" {
		locale = "en"
	}
	trans, ok := uni.GetTranslator(locale)
	if !ok {
		return nil, fmt.Errorf("uni.GetTranslator(%s) failed", locale)
	}

	var err error
	required := MsgFieldRequired
	if locale == "zh" {
		err = zh_translations.RegisterDefaultTranslations(v, trans)
		required = "该字段为必填项"
	} else {
		err = en_translations.RegisterDefaultTranslations(v, trans)
	}
	if err != nil {
		return nil, err
	}

	// 必填提示不带字段名
	err = v.RegisterTranslation("required", trans,
		func(ut ut.Translator) error {
			return ut.Add("required", required, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T("required")
			return t
		},
	)
	if err != nil {
		return nil, err
	}

	tooLong := "{0} must be at most {1} characters"
	if locale == "zh" {
		tooLong = "{0}长度不能超过{1}个字符"
	}
	err = v.RegisterTranslation("utf16max", trans,
		func(ut ut.Translator) error {
			return ut.Add("utf16max", tooLong, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T("utf16max", fe.Field(), fe.Param())
			return t
		},
	)
	if err != nil {
		return nil, err
	}

	return &FormValidator{validate: v, trans: trans}, nil
}

// Validate 校验表单，通过时返回 nil
// 返回值以 json 字段名为 key，如 {"email": "This field is required"}
func (f *FormValidator) Validate(form request.FriendRequestForm) map[string]string {
	err := f.validate.Struct(form)
	if err == nil {
		return nil
	}
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"form": err.Error()}
	}
	return removeTopStruct(validationErrs.Translate(f.trans))
}

// removeTopStruct 去掉 "FriendRequestForm.email" 中的结构体名前缀
func removeTopStruct(fields map[string]string) map[string]string {
	res := make(map[string]string, len(fields))
	for field, msg := range fields {
		res[field[strings.Index(field, ".")+1:]] = msg
	}
	return res
}

// utf16Max 按 UTF-16 码元计数的长度上限
// 表情等补充平面字符占两个码元，和浏览器端的长度校验保持一致
func utf16Max(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(utf16.Encode([]rune(fl.Field().String()))) <= limit
}
