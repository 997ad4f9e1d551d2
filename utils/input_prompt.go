package utils

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/aitests/aitests/constants/lipgloss"
)

// ConfirmPrompt asks a yes/no question and reports whether the answer was yes.
func ConfirmPrompt(question string, reader *bufio.Reader) (bool, error) {
	fmt.Print(lipgloss.BlueSky.Render(fmt.Sprintf("%s (y/N): ", question)))

	answer, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("error reading input: %w", err)
	}

	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}
