package wire

import "fmt"

// DefaultLanguage is used when a join request does not name one.
const DefaultLanguage = "javascript"

// Language describes an editor language offered by the server.
type Language struct {
	Value string
	Label string
}

// Languages is the set of languages the room server templates and runs.
var Languages = []Language{
	{Value: "javascript", Label: "JavaScript"},
	{Value: "python", Label: "Python"},
	{Value: "html", Label: "HTML"},
	{Value: "css", Label: "CSS"},
	{Value: "java", Label: "Java"},
	{Value: "cpp", Label: "C++"},
}

// ValidateLanguage returns an error for languages outside Languages.
func ValidateLanguage(value string) error {
	for _, l := range Languages {
		if l.Value == value {
			return nil
		}
	}
	return fmt.Errorf("unsupported language %q", value)
}
