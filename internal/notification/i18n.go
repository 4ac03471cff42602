package notification

import (
	"embed"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

//go:embed locales/active.*.toml
var localeFS embed.FS

var localeFiles = []string{"locales/active.en.toml", "locales/active.tr.toml"}

// Translator renders mail and push texts in the recipient's language.
type Translator struct {
	bundle          *i18n.Bundle
	defaultLanguage language.Tag
	log             *zap.Logger
}

// NewTranslator loads the embedded catalogs. Unknown default locales fall
// back to English.
func NewTranslator(defaultLocale string, log *zap.Logger) *Translator {
	if log == nil {
		log = zap.NewNop()
	}
	tag, err := language.Parse(defaultLocale)
	if err != nil {
		tag = language.English
	}
	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, file := range localeFiles {
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			log.Error("❌ failed to load locale file", zap.String("file", file), zap.Error(err))
		}
	}

	return &Translator{bundle: bundle, defaultLanguage: tag, log: log}
}

// T renders key for locale, then the default locale, then returns the key itself.
func (t *Translator) T(locale, key string, data map[string]interface{}) string {
	if key == "" {
		return ""
	}

	languages := []string{}
	if locale != "" {
		languages = append(languages, locale)
	}
	languages = append(languages, t.defaultLanguage.String())

	localizer := i18n.NewLocalizer(t.bundle, languages...)
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		t.log.Warn("⚠️ localize failed", zap.String("key", key), zap.Strings("locales", languages), zap.Error(err))
		return key
	}
	return msg
}
