package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Suggestion is one remediation hint shown after an error.
type Suggestion struct {
	Title       string
	Description string
	Command     string
	Example     string
}

// Suggest returns hints for the structured errors raised while resolving or
// building a target. Other errors get none.
func Suggest(err error) []Suggestion {
	var e *Error
	if !errors.As(err, &e) {
		return nil
	}

	switch e.Code {
	case ErrCodeUnknownTarget:
		return unknownTargetSuggestions(e)
	case ErrCodeConfigMissingField:
		return []Suggestion{{
			Title:       "Set " + e.Field,
			Description: "The selected target has no default for this field",
			Command:     "targetforge resolve --target <target>",
		}}
	case ErrCodeConfigInvalid:
		return []Suggestion{{
			Title:       "Check " + e.Field,
			Description: e.Message,
		}}
	case ErrCodeModuleNotFound:
		return moduleNotFoundSuggestions(e)
	case ErrCodeBuildFailed:
		return buildFailureSuggestions(e)
	case ErrCodeFileNotFound:
		return []Suggestion{{
			Title:       "Check the configuration path",
			Description: "Pass --config or set TARGETFORGE_CONFIG_FILE",
			Example:     "targetforge build --config ./.targetforge.yml",
		}}
	default:
		return nil
	}
}

func unknownTargetSuggestions(e *Error) []Suggestion {
	suggestions := []Suggestion{{
		Title:   "List the deployment targets",
		Command: "targetforge targets",
	}}

	value, _ := e.Context["value"].(string)
	valid, _ := e.Context["valid"].([]string)
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return suggestions
	}
	for _, name := range valid {
		if strings.Contains(name, value) || strings.HasPrefix(value, name) {
			suggestions = append(suggestions, Suggestion{
				Title:   fmt.Sprintf("Did you mean '%s'?", name),
				Command: "targetforge build --target " + name,
			})
			break
		}
	}
	return suggestions
}

func moduleNotFoundSuggestions(e *Error) []Suggestion {
	suggestions := []Suggestion{{
		Title:       "Check the import path",
		Description: "Relative specifiers resolve against the importing file's directory",
	}}
	for _, msg := range e.Messages {
		if strings.Contains(msg, ".node") {
			suggestions = append(suggestions, Suggestion{
				Title:       "Build the native addon first",
				Description: "A .node binary is copied into the preload bundle only if it exists at build time",
				Example:     "npx node-gyp rebuild",
			})
			break
		}
	}
	return suggestions
}

func buildFailureSuggestions(e *Error) []Suggestion {
	for _, msg := range e.Messages {
		if strings.Contains(msg, `No loader is configured for ".node" files`) {
			return []Suggestion{{
				Title:       "Import native addons from the preload script only",
				Description: "Only the desktop shell's privileged preload bundle may load .node binaries",
				Example:     "src-electron/electron-preload.ts",
			}}
		}
	}
	return []Suggestion{{
		Title:   "Rebuild with debug logging",
		Command: "targetforge build --log-level debug",
	}}
}

// FormatSuggestions formats suggestions into a user-friendly string
func FormatSuggestions(title string, suggestions []Suggestion) string {
	if len(suggestions) == 0 {
		return title
	}

	var output strings.Builder
	if title != "" {
		output.WriteString(title + "\n\n")
	}
	output.WriteString("Suggestions:\n")

	for i, suggestion := range suggestions {
		output.WriteString(fmt.Sprintf("  %d. %s\n", i+1, suggestion.Title))
		if suggestion.Description != "" {
			output.WriteString(fmt.Sprintf("     %s\n", suggestion.Description))
		}
		if suggestion.Command != "" {
			output.WriteString(fmt.Sprintf("     Run: %s\n", suggestion.Command))
		}
		if suggestion.Example != "" {
			output.WriteString(fmt.Sprintf("     Example: %s\n", suggestion.Example))
		}
	}

	return output.String()
}
