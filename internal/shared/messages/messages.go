package messages

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Messages holds the bot reply templates. Placeholders are written as
// {item}, {amount}, {payment}, {category} and {error}.
type Messages struct {
	Start   string `json:"start"`
	Added   string `json:"added"`
	Invalid string `json:"invalid"`
	Failed  string `json:"failed"`
}

// Defaults returns the built-in English replies.
func Defaults() *Messages {
	return &Messages{
		Start: "Hi! 👋\nSend me your expense in this format:\n\n" +
			"Item, Amount, Payment_Type[, Category]\n\n" +
			"Example:\nCoffee, 120, Cash",
		Added: "✅ Added expense:\nItem: {item}\nAmount: {amount}\n" +
			"Payment Type: {payment}\nCategory: {category}",
		Invalid: "⚠️ Couldn't add expense:\n{error}",
		Failed:  "⚠️ Couldn't save expense right now, please try again later.",
	}
}

// Load reads reply overrides from a JSON file. Keys missing from the file
// keep their default text; an empty path returns the defaults.
func Load(path string) (*Messages, error) {
	msgs := Defaults()
	if path == "" {
		return msgs, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read messages file: %w", err)
	}
	if err := json.Unmarshal(data, msgs); err != nil {
		return nil, fmt.Errorf("failed to parse messages file: %w", err)
	}
	return msgs, nil
}

// Render substitutes {key} placeholders in tmpl.
func Render(tmpl string, values map[string]string) string {
	pairs := make([]string, 0, len(values)*2)
	for k, v := range values {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
