package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Supported lists the locales shipped in locales/.
var Supported = []language.Tag{language.English, language.Thai}

type ctxKey struct{}

type localized struct {
	locale    string
	localizer *i18n.Localizer
}

// Translator owns the message bundle. One instance is built at startup and
// shared by every request.
type Translator struct {
	bundle        *i18n.Bundle
	matcher       language.Matcher
	defaultLocale language.Tag
}

func NewTranslator(defaultLocale string) (*Translator, error) {
	def := language.English
	if defaultLocale != "" {
		tag, err := language.Parse(defaultLocale)
		if err != nil {
			return nil, fmt.Errorf("i18n: parse default locale %q: %w", defaultLocale, err)
		}
		def = tag
	}

	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("i18n: read locales dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile("locales/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("i18n: read %s: %w", e.Name(), err)
		}
		if _, err := bundle.ParseMessageFileBytes(data, e.Name()); err != nil {
			return nil, fmt.Errorf("i18n: parse %s: %w", e.Name(), err)
		}
	}

	// The matcher falls back to its first tag.
	tags := []language.Tag{def}
	for _, tag := range Supported {
		if tag != def {
			tags = append(tags, tag)
		}
	}

	return &Translator{
		bundle:        bundle,
		matcher:       language.NewMatcher(tags),
		defaultLocale: def,
	}, nil
}

// Match picks the supported locale for an Accept-Language header value.
func (t *Translator) Match(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		tags = []language.Tag{t.defaultLocale}
	}
	tag, _, _ := t.matcher.Match(tags...)
	base, _ := tag.Base()
	return base.String()
}

// WithLocale returns a context whose messages render in locale.
func (t *Translator) WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, ctxKey{}, localized{
		locale:    locale,
		localizer: i18n.NewLocalizer(t.bundle, locale),
	})
}

// LocaleFromContext returns the request locale, or "" when none was set.
func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(localized); ok {
		return v.locale
	}
	return ""
}

// Translate renders messageID in the locale carried by ctx. fallback is
// returned when ctx has no locale or the message is unknown.
func Translate(ctx context.Context, messageID, fallback string, templateData map[string]any) string {
	v, ok := ctx.Value(ctxKey{}).(localized)
	if !ok {
		return fallback
	}

	msg, err := v.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: templateData,
	})
	if err != nil || msg == "" {
		return fallback
	}
	return msg
}
