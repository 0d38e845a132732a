package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mizanhq/mizan/internal/i18n"
)

type registerForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Language string `json:"language" validate:"oneof=ar en"`
}

func TestStruct(t *testing.T) {
	t.Run("valid struct returns nil", func(t *testing.T) {
		errs := Struct(i18n.LangEN, registerForm{
			Email:    "sara@example.com",
			Password: "correct-horse",
			Language: "ar",
		})
		assert.Nil(t, errs)
	})

	t.Run("english messages", func(t *testing.T) {
		errs := Struct(i18n.LangEN, registerForm{
			Email:    "not-an-email",
			Password: "short",
			Language: "en",
		})
		require.Len(t, errs, 2)
		assert.Equal(t, "email", errs[0].Field)
		assert.Equal(t, "field email must be a valid email address", errs[0].Message)
		assert.Equal(t, "field password must be at least 8 characters", errs[1].Message)
	})

	t.Run("arabic messages", func(t *testing.T) {
		errs := Struct(i18n.LangAR, registerForm{
			Password: "long-enough",
			Language: "en",
		})
		require.Len(t, errs, 1)
		assert.Equal(t, "الحقل email مطلوب", errs[0].Message)
	})

	t.Run("oneof includes params", func(t *testing.T) {
		errs := Struct(i18n.LangEN, registerForm{
			Email:    "x@example.com",
			Password: "long-enough",
			Language: "fr",
		})
		require.Len(t, errs, 1)
		assert.Equal(t, "field language must be one of: ar en", errs[0].Message)
	})

	t.Run("errors join into one string", func(t *testing.T) {
		errs := Struct(i18n.LangEN, registerForm{Language: "en"})
		require.Len(t, errs, 2)
		assert.Contains(t, errs.Error(), "; ")
	})
}
