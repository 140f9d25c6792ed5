package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/entrhq/applyforge/pkg/detect"
)

// consolePrompter escalates unresolved fields to the terminal. Entering
// "s" skips a field.
type consolePrompter struct {
	in *bufio.Scanner
}

func newConsolePrompter() *consolePrompter {
	return &consolePrompter{in: bufio.NewScanner(os.Stdin)}
}

func (p *consolePrompter) AskText(field *detect.FormField) (string, bool) {
	fmt.Printf("\nUnknown field: %s\n", field.Label)
	if field.Required {
		fmt.Println("This field is marked required.")
	}
	fmt.Println("Enter your answer (or 's' to skip):")
	answer, ok := p.readLine()
	if !ok || strings.EqualFold(answer, "s") || answer == "" {
		return "", false
	}
	return answer, true
}

func (p *consolePrompter) AskChoice(field *detect.FormField, options []string) (string, bool) {
	fmt.Printf("\nUnknown dropdown: %s\n", field.Label)
	for i, opt := range options {
		fmt.Printf("  %d) %s\n", i+1, opt)
	}
	fmt.Println("Enter the number of your choice (or 's' to skip):")

	for {
		answer, ok := p.readLine()
		if !ok || strings.EqualFold(answer, "s") {
			return "", false
		}
		idx, err := strconv.Atoi(answer)
		if err == nil && idx >= 1 && idx <= len(options) {
			return options[idx-1], true
		}
		fmt.Printf("Invalid choice. Enter 1-%d or 's' to skip:\n", len(options))
	}
}

func (p *consolePrompter) readLine() (string, bool) {
	fmt.Print("> ")
	if !p.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(p.in.Text()), true
}
