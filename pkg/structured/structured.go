// Package structured разбирает ответы языковых моделей, в которых ожидается JSON:
// снимает обёртку ```json ... ```, парсит объект или массив и проверяет обязательные поля.
package structured

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	ErrMalformed    = errors.New("malformed structured response")
	ErrMissingField = errors.New("missing required field")
	ErrEmptyArray   = errors.New("empty array in structured response")
)

// StripCodeFence убирает markdown-обёртку вокруг JSON, если она есть.
func StripCodeFence(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	// язык после открывающих кавычек: ```json
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "{[") {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")

	return strings.TrimSpace(s)
}

// DecodeObject разбирает JSON-объект и возвращает значения обязательных строковых полей.
// Пустые и отсутствующие поля дают ErrMissingField, слишком длинные обрезаются до maxLen символов.
// maxLen <= 0 отключает ограничение.
func DecodeObject(content string, fields []string, maxLen int) (map[string]string, error) {
	var raw map[string]any
	if err := unmarshalWithin(content, '{', '}', &raw); err != nil {
		return nil, err
	}

	result := make(map[string]string, len(fields))
	for _, field := range fields {
		value, ok := raw[field].(string)
		if !ok || strings.TrimSpace(value) == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, field)
		}
		result[field] = Truncate(strings.TrimSpace(value), maxLen)
	}

	return result, nil
}

// DecodeStringArray разбирает непустой JSON-массив строк.
func DecodeStringArray(content string) ([]string, error) {
	var raw []any
	if err := unmarshalWithin(content, '[', ']', &raw); err != nil {
		return nil, err
	}

	if len(raw) == 0 {
		return nil, ErrEmptyArray
	}

	result := make([]string, 0, len(raw))
	for i, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%w: element %d is %T, not a string", ErrMalformed, i, item)
		}
		result = append(result, s)
	}

	return result, nil
}

// Truncate обрезает строку до maxLen символов (рун), не разрывая многобайтовые символы.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}

	runes := []rune(s)
	return string(runes[:maxLen])
}

// unmarshalWithin пробует распарсить ответ целиком, а при неудаче фрагмент между
// первым open и последним close: модели любят добавлять пояснения вокруг JSON.
func unmarshalWithin(content string, open, close byte, v any) error {
	s := StripCodeFence(content)
	if s == "" {
		return fmt.Errorf("%w: empty content", ErrMalformed)
	}

	err := json.Unmarshal([]byte(s), v)
	if err == nil {
		return nil
	}

	start := strings.IndexByte(s, open)
	end := strings.LastIndexByte(s, close)
	if start < 0 || end <= start {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if err := json.Unmarshal([]byte(s[start:end+1]), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	return nil
}
