package sitecounts

import (
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys. English is the source language.
const (
	msgCountLine   = "There are %[1]s %[2]s."
	msgCurrentItem = "The current post ID is %[1]s"
	msgListHeading = "5 posts with the tag of foo and the category of baz"
)

var defaultCatalog = newCatalog()

func newCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))

	set := func(tag language.Tag, key, msg string) {
		if err := b.SetString(tag, key, msg); err != nil {
			panic(err)
		}
	}

	set(language.English, msgCountLine, msgCountLine)
	set(language.English, msgCurrentItem, msgCurrentItem)
	set(language.English, msgListHeading, msgListHeading)

	set(language.German, msgCountLine, "Es gibt %[1]s %[2]s.")
	set(language.German, msgCurrentItem, "Die aktuelle Beitrags-ID ist %[1]s")
	set(language.German, msgListHeading, "5 Beiträge mit dem Schlagwort foo und der Kategorie baz")

	set(language.French, msgCountLine, "Il y a %[1]s %[2]s.")
	set(language.French, msgCurrentItem, "L'ID de l'article actuel est %[1]s")
	set(language.French, msgListHeading, "5 articles avec l'étiquette foo et la catégorie baz")

	return b
}

// MessageTranslator is a Translator backed by a golang.org/x/text message
// catalog. Numbers are passed through unformatted so counts and ids appear
// exactly as stored.
type MessageTranslator struct {
	printer *message.Printer
}

// NewTranslator returns a translator for the given language. Languages
// without a translation fall back to English.
func NewTranslator(tag language.Tag) *MessageTranslator {
	return &MessageTranslator{
		printer: message.NewPrinter(tag, message.Catalog(defaultCatalog)),
	}
}

// ParseLocale parses a BCP 47 tag such as "en" or "de-DE".
func ParseLocale(locale string) (language.Tag, error) {
	if locale == "" {
		return language.English, nil
	}
	return language.Parse(locale)
}

func (t *MessageTranslator) CountLine(count int, typeName string) string {
	return t.printer.Sprintf(msgCountLine, strconv.Itoa(count), typeName)
}

func (t *MessageTranslator) CurrentItemLine(id ItemID) string {
	return t.printer.Sprintf(msgCurrentItem, strconv.FormatInt(int64(id), 10))
}

func (t *MessageTranslator) ListHeading() string {
	return t.printer.Sprintf(msgListHeading)
}
