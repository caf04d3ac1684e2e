package analyzer

import "fmt"

// Language selects a message catalog.
type Language string

const (
	Russian Language = "ru"
	English Language = "en"
)

// ParseLanguage returns the Language for code, or an error for unknown codes.
func ParseLanguage(code string) (Language, error) {
	switch Language(code) {
	case Russian, English:
		return Language(code), nil
	}
	return "", fmt.Errorf("unsupported rules language %q", code)
}

// catalog holds the verdict texts of every rule. Entries ending in "f" are
// format strings.
type catalog struct {
	sslOK, sslError                  string
	titleOK, titleLengthf, titleNone string
	metaOK, metaLength, metaNone     string
	h1OK, h1None, h1Manyf            string
	textShortf, textLongf, textOK    string
	altNoImages, altAll, altMissingf string
	formsOK, formsNone               string
	analyticsFoundf, analyticsNone   string
	analyticsSeparator               string
}

var catalogs = map[Language]catalog{
	Russian: {
		sslOK:              "SSL-сертификат корректен.",
		sslError:           "Сайт не использует корректный SSL-сертификат.",
		titleOK:            "Title присутствует и имеет оптимальную длину.",
		titleLengthf:       "Title длиной %d символов — рекомендуется %d–%d.",
		titleNone:          "Title отсутствует.",
		metaOK:             "Meta description присутствует.",
		metaLength:         "Meta description слишком короткий/длинный.",
		metaNone:           "Meta description отсутствует.",
		h1OK:               "На странице ровно один H1.",
		h1None:             "H1 отсутствует.",
		h1Manyf:            "На странице %d тегов H1 — рекомендуется один.",
		textShortf:         "Текст слишком короткий (%d слов). Рекомендуется ≥ %d.",
		textLongf:          "Текст слишком длинный (%d слов). Рекомендуется ≤ %d для лендинга.",
		textOK:             "Длина текста оптимальна.",
		altNoImages:        "На странице нет изображений.",
		altAll:             "Все изображения имеют alt-текст.",
		altMissingf:        "%.0f%% изображений без alt-текста.",
		formsOK:            "На странице обнаружены формы.",
		formsNone:          "Формы для сбора лидов не найдены.",
		analyticsFoundf:    "Найдены скрипты: %s",
		analyticsNone:      "Скрипты аналитики не обнаружены.",
		analyticsSeparator: "; ",
	},
	English: {
		sslOK:              "The SSL certificate is valid.",
		sslError:           "The site does not use a valid SSL certificate.",
		titleOK:            "Title is present and has an optimal length.",
		titleLengthf:       "Title is %d characters long; %d-%d is recommended.",
		titleNone:          "Title is missing.",
		metaOK:             "Meta description is present.",
		metaLength:         "Meta description is too short or too long.",
		metaNone:           "Meta description is missing.",
		h1OK:               "The page has exactly one H1.",
		h1None:             "H1 is missing.",
		h1Manyf:            "The page has %d H1 tags; one is recommended.",
		textShortf:         "The text is too short (%d words). At least %d is recommended.",
		textLongf:          "The text is too long (%d words). At most %d is recommended for a landing page.",
		textOK:             "The text length is optimal.",
		altNoImages:        "The page has no images.",
		altAll:             "All images have alt text.",
		altMissingf:        "%.0f%% of images have no alt text.",
		formsOK:            "Forms were found on the page.",
		formsNone:          "No lead capture forms were found.",
		analyticsFoundf:    "Scripts found: %s",
		analyticsNone:      "No analytics scripts were detected.",
		analyticsSeparator: "; ",
	},
}
