// Package i18n provides the Arabic/English message catalog and request
// language negotiation.
package i18n

import (
	"net/http"

	"golang.org/x/text/language"
)

// Lang is a supported interface language.
type Lang string

const (
	LangEN Lang = "en"
	LangAR Lang = "ar"
)

// Valid reports whether l is a supported language.
func (l Lang) Valid() bool {
	return l == LangEN || l == LangAR
}

var matcher = language.NewMatcher([]language.Tag{
	language.English, // first entry is the fallback
	language.Arabic,
})

// FromRequest negotiates the response language for an HTTP request.
// An explicit ?lang= query parameter wins; otherwise the Accept-Language
// header is matched, defaulting to English.
func FromRequest(r *http.Request) Lang {
	if l := Lang(r.URL.Query().Get("lang")); l.Valid() {
		return l
	}

	tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil || len(tags) == 0 {
		return LangEN
	}
	_, idx, _ := matcher.Match(tags...)
	if idx == 1 {
		return LangAR
	}
	return LangEN
}

// messages maps message id -> language -> text.
var messages = map[string]map[Lang]string{
	"error.internal": {
		LangEN: "something went wrong, please try again",
		LangAR: "حدث خطأ ما، يرجى المحاولة مرة أخرى",
	},
	"error.not_found": {
		LangEN: "not found",
		LangAR: "غير موجود",
	},
	"error.unauthorized": {
		LangEN: "authentication required",
		LangAR: "يجب تسجيل الدخول",
	},
	"error.forbidden": {
		LangEN: "you do not have permission to do that",
		LangAR: "ليس لديك صلاحية للقيام بذلك",
	},
	"error.bad_request": {
		LangEN: "invalid request",
		LangAR: "طلب غير صالح",
	},
	"error.invalid_credentials": {
		LangEN: "incorrect email or password",
		LangAR: "البريد الإلكتروني أو كلمة المرور غير صحيحة",
	},
	"error.email_taken": {
		LangEN: "an account with this email already exists",
		LangAR: "يوجد حساب مسجل بهذا البريد الإلكتروني",
	},
	"error.unknown_size": {
		LangEN: "size not found in the selected chart",
		LangAR: "المقاس غير موجود في الجدول المحدد",
	},
	"error.invalid_color": {
		LangEN: "invalid color value",
		LangAR: "قيمة لون غير صالحة",
	},
	"error.rate_limited": {
		LangEN: "too many requests, slow down",
		LangAR: "عدد كبير جدًا من الطلبات، يرجى الإبطاء",
	},
}

// T returns the message text for id in the given language. Unknown ids
// return the id itself so missing catalog entries surface in responses
// instead of crashing.
func T(lang Lang, id string) string {
	byLang, ok := messages[id]
	if !ok {
		return id
	}
	if msg, ok := byLang[lang]; ok {
		return msg
	}
	return byLang[LangEN]
}
