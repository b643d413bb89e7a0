// Package translate localizes user visible messages of the simulator.
//
// Messages are en-US Sprintf formats. The language comes from SOSIM_LANG
// when set, else from the system locales, else en-US. Numbers in messages
// follow the language's grouping, so column aligned dumps format with fmt.
package translate

import (
	"log"
	"os"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// LANG_ENV overrides the system locales.
const LANG_ENV = "SOSIM_LANG"

// DEFAULT_LANG is used when no locale can be found.
const DEFAULT_LANG = "en-US"

var printer *message.Printer

func init() {
	locales := []string{}

	if lang := os.Getenv(LANG_ENV); lang != "" {
		locales = append(locales, lang)
	}

	system, err := locale.GetLocales()
	if err != nil {
		log.Printf("sosim: locale: %v", err)
	}
	locales = append(locales, system...)

	if len(locales) == 0 {
		locales = []string{DEFAULT_LANG}
	}

	printer = message.NewPrinter(message.MatchLanguage(locales...))
}

// SetLanguage selects the message language by BCP 47 tag.
func SetLanguage(lang string) (err error) {
	tag, err := language.Parse(lang)
	if err != nil {
		return
	}

	printer = message.NewPrinter(tag)

	return
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}
