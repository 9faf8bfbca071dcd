package i18n

import (
	"strings"
	"sync"
)

// Translator retrieves localized messages for Issue codes.
// data provides optional parameters substituted into "{name}" placeholders
// (for example, "min" or "options").
type Translator interface {
	Message(code string, data map[string]string) string
}

var dictionaries = map[string]map[string]string{
	"en": {
		"invalid_type":   "Invalid {expected}",
		"required":       "Required",
		"unknown_key":    "Unrecognized field",
		"too_short":      "Must contain at least {min} character(s)",
		"too_long":       "Must contain at most {max} character(s)",
		"too_small":      "Must be greater than or equal to {min}",
		"too_big":        "Must be less than or equal to {max}",
		"pattern":        "Invalid format",
		"invalid_enum":   "Must be one of: {options}",
		"invalid_format": "Invalid {format}",
		"custom":         "Invalid input",
	},
	"ja": {
		"invalid_type":   "{expected}の値が不正です",
		"required":       "必須項目です",
		"unknown_key":    "未知のフィールドです",
		"too_short":      "{min}文字以上で入力してください",
		"too_long":       "{max}文字以内で入力してください",
		"too_small":      "{min}以上の値を入力してください",
		"too_big":        "{max}以下の値を入力してください",
		"pattern":        "形式が正しくありません",
		"invalid_enum":   "次のいずれかを選択してください: {options}",
		"invalid_format": "{format}の形式が正しくありません",
		"custom":         "入力が不正です",
	},
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := dictionaries[t.lang][code]
	if !ok {
		return code
	}
	if len(data) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

var (
	mu                           = sync.RWMutex{}
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if _, ok := dictionaries[lang]; !ok {
		lang = "en"
	}
	SetTranslator(dictTranslator{lang: lang})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
