package httpapi

import (
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	transOnce sync.Once
	trans     ut.Translator
)

// translator registers English messages on gin's validator, with query names
// (the form tag) as field names. It must run before the first bind.
func translator() ut.Translator {
	transOnce.Do(func() {
		enLoc := en.New()
		trans, _ = ut.New(enLoc, enLoc).GetTranslator("en")

		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("form")
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			if tag == "" || tag == "-" {
				return fld.Name
			}
			return tag
		})
		_ = en_translations.RegisterDefaultTranslations(v, trans)
	})
	return trans
}

// bindQuery binds the query string into dst, translating validation failures.
func bindQuery(c *gin.Context, dst any) *badRequest {
	t := translator()
	if err := c.ShouldBindQuery(dst); err != nil {
		return bindingError(err, t)
	}
	return nil
}
