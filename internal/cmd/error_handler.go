package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mottu/mottu-cli/internal/api"
	"github.com/mottu/mottu-cli/internal/resolve"
)

// HandleError renders err with suggestions for the terminal.
func HandleError(err error) string {
	if err == nil {
		return ""
	}

	var msg strings.Builder
	var (
		authErr      *api.AuthError
		apiErr       *api.APIError
		exhausted    *api.RequestExhaustedError
		netErr       *api.NetworkError
		ambiguousErr *resolve.AmbiguousError
		structured   *api.StructuredError
	)

	switch {
	case errors.Is(err, api.ErrRegistrationUnavailable):
		fmt.Fprintf(&msg, "Registration unavailable.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Ask an administrator to create the user: mottu users create\n")
		msg.WriteString("  - Check the register paths with: mottu paths\n")

	case errors.As(err, &authErr):
		fmt.Fprintf(&msg, "Authentication failed: %s\n\n", authErr.Reason)
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Run: mottu auth login\n")
		msg.WriteString("  - Check the login paths with: mottu paths\n")

	case errors.As(err, &exhausted) && exhausted.Status != 0:
		fmt.Fprintf(&msg, "Error: %s\n", err)
		fmt.Fprintf(&msg, "Tried %d path(s):\n", len(exhausted.Attempts))
		for _, a := range exhausted.Attempts {
			if a.Err != nil {
				fmt.Fprintf(&msg, "  %s  (%v)\n", a.Path, a.Err)
			} else {
				fmt.Fprintf(&msg, "  %s  (%d)\n", a.Path, a.Status)
			}
		}
		msg.WriteString("\n")
		msg.WriteString(suggestionsForStatusCode(exhausted.Status))

	case errors.As(err, &apiErr):
		fmt.Fprintf(&msg, "Error: %s\n\n", err)
		msg.WriteString(suggestionsForStatusCode(apiErr.StatusCode))

	case errors.As(err, &netErr), errors.As(err, &exhausted):
		fmt.Fprintf(&msg, "Error: %s\n\n", err)
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Check the base URL: mottu auth status\n")
		msg.WriteString("  - Check that the API server is running\n")
		msg.WriteString("  - Raise --timeout for slow networks\n")

	case errors.As(err, &ambiguousErr):
		fmt.Fprintf(&msg, "Error: %s\n\n", err)
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Pass the area ID instead: mottu areas list\n")

	case errors.As(err, &structured) && structured.Suggestion != "":
		fmt.Fprintf(&msg, "Error: %s\n", structured.Message)
		fmt.Fprintf(&msg, "  %s\n", structured.Suggestion)

	default:
		fmt.Fprintf(&msg, "Error: %s\n", err)
	}

	return msg.String()
}

func suggestionsForStatusCode(code int) string {
	var s strings.Builder
	s.WriteString("Suggestions:\n")

	switch {
	case code == 400 || code == 422:
		s.WriteString("  - Check the input values\n")
		s.WriteString("  - Use --debug to see the server's reply\n")
	case code == 401:
		s.WriteString("  - Your session may have expired\n")
		s.WriteString("  - Run: mottu auth login\n")
	case code == 403:
		s.WriteString("  - Your user lacks permission for this action\n")
	case code == 404 || code == 405:
		s.WriteString("  - Check the ID is correct\n")
		s.WriteString("  - The backend may use other routes; see: mottu paths\n")
	case code >= 500:
		s.WriteString("  - Server error; wait and retry\n")
	default:
		s.WriteString("  - Use --debug for more details\n")
	}

	return s.String()
}
