package parser

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/kidandcat/softassert/pkg/softtest"
)

type argShape int

const (
	textArg argShape = iota
	selectorArg
	selectorValueArgs
	selectorAttributeValueArgs
	optionalTextArg
)

var actions = map[string]argShape{
	"navigate":                  textArg,
	"assert_url":                textArg,
	"assert_title":              textArg,
	"wait_for_url":              textArg,
	"click":                     selectorArg,
	"hover":                     selectorArg,
	"check":                     selectorArg,
	"uncheck":                   selectorArg,
	"wait_for":                  selectorArg,
	"assert_element_exists":     selectorArg,
	"assert_element_not_exists": selectorArg,
	"type":                      selectorValueArgs,
	"select":                    selectorValueArgs,
	"assert_text":               selectorValueArgs,
	"assert_text_contains":      selectorValueArgs,
	"assert_count":              selectorValueArgs,
	"wait_for_text":             selectorValueArgs,
	"assert_attribute":          selectorAttributeValueArgs,
	"screenshot":                optionalTextArg,
}

var minArgs = map[argShape]int{
	textArg:                    1,
	selectorArg:                1,
	selectorValueArgs:          2,
	selectorAttributeValueArgs: 3,
}

var requirements = map[argShape]string{
	textArg:                    "an argument",
	selectorArg:                "a selector",
	selectorValueArgs:          "a selector and a value",
	selectorAttributeValueArgs: "a selector, attribute name, and expected value",
}

type Parser struct{}

func New() *Parser {
	return &Parser{}
}

func (p *Parser) ParseFile(filename string) ([]softtest.Test, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	return p.parse(scanner)
}

func (p *Parser) ParseString(content string) ([]softtest.Test, error) {
	scanner := bufio.NewScanner(strings.NewReader(content))
	return p.parse(scanner)
}

func (p *Parser) parse(scanner *bufio.Scanner) ([]softtest.Test, error) {
	var tests []softtest.Test
	var currentTest *softtest.Test
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "test ") {
			if currentTest != nil {
				tests = append(tests, *currentTest)
			}
			currentTest = &softtest.Test{
				Name: strings.Trim(strings.TrimPrefix(line, "test "), `"'`),
			}
			continue
		}

		if currentTest == nil {
			continue
		}
		step, err := p.parseLine(line, lineNum)
		if err != nil {
			return nil, err
		}
		currentTest.Steps = append(currentTest.Steps, step)
	}

	if currentTest != nil {
		tests = append(tests, *currentTest)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return tests, nil
}

func (p *Parser) parseLine(line string, lineNum int) (softtest.Step, error) {
	parts, err := split(line)
	if err != nil {
		return softtest.Step{}, fmt.Errorf("line %d: %w", lineNum, err)
	}

	action := parts[0]
	args := parts[1:]
	shape, ok := actions[action]
	if !ok {
		return softtest.Step{}, fmt.Errorf("line %d: unknown action: %s", lineNum, action)
	}

	if len(args) < minArgs[shape] {
		return softtest.Step{}, fmt.Errorf("line %d: %s requires %s", lineNum, action, requirements[shape])
	}

	step := softtest.Step{Action: action, Line: lineNum}
	switch shape {
	case textArg, optionalTextArg:
		step.Target = strings.Join(args, " ")
	case selectorArg:
		step.By, step.Target = softtest.ParseSelector(strings.Join(args, " "))
	case selectorValueArgs:
		step.By, step.Target = softtest.ParseSelector(args[0])
		step.Value = strings.Join(args[1:], " ")
	case selectorAttributeValueArgs:
		step.By, step.Target = softtest.ParseSelector(args[0])
		step.Attribute = args[1]
		step.Value = strings.Join(args[2:], " ")
	}
	return step, nil
}

// split breaks a line into fields. Single- or double-quoted fields may
// contain spaces and the other quote character.
func split(line string) ([]string, error) {
	var (
		fields  []string
		current strings.Builder
		quote   rune
		inField bool
	)
	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			current.WriteRune(r)
		case r == '"' || r == '\'':
			quote = r
			inField = true
		case r == ' ' || r == '\t':
			if inField {
				fields = append(fields, current.String())
				current.Reset()
				inField = false
			}
		default:
			current.WriteRune(r)
			inField = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	if inField {
		fields = append(fields, current.String())
	}
	return fields, nil
}
