// Package calculator implements the arithmetic evaluator tool. It parses and
// evaluates plain arithmetic expressions without calling out of process, so
// model-suggested math never goes through an eval of untrusted code.
package calculator

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/leofalp/opsgraph/providers/tool"
)

// Name is the registry name of this tool.
const Name = "calculator"

// Input holds the expression to evaluate.
type Input struct {
	Expression string `json:"expression"`
}

// Output carries the original expression and its computed result.
type Output struct {
	Expression string  `json:"expression"`
	Result     float64 `json:"result"`
}

// Evaluate parses and computes an arithmetic expression supporting the four
// basic operators, parentheses, unary minus, and decimal numbers.
func Evaluate(_ context.Context, input Input) (Output, error) {
	expressionParser := &parser{input: strings.ReplaceAll(input.Expression, " ", "")}

	if expressionParser.input == "" {
		return Output{}, fmt.Errorf("empty expression")
	}

	result, err := expressionParser.parseExpression()
	if err != nil {
		return Output{}, fmt.Errorf("failed to evaluate %q: %w", input.Expression, err)
	}

	if !expressionParser.atEnd() {
		return Output{}, fmt.Errorf("unexpected character %q in expression %q", expressionParser.peek(), input.Expression)
	}

	return Output{Expression: input.Expression, Result: result}, nil
}

// NewCalculatorTool returns the arithmetic evaluator tool.
func NewCalculatorTool() *tool.Tool[Input, Output] {
	return tool.NewTool(Name, Evaluate,
		tool.WithDescription("Evaluate a math expression. Only supports numbers and basic operators (+, -, *, /, parentheses)."),
	)
}

// parser is a small recursive-descent evaluator.
//
// Grammar:
//
//	expression = term { ("+" | "-") term }
//	term       = factor { ("*" | "/") factor }
//	factor     = number | "(" expression ")" | "-" factor
type parser struct {
	input    string
	position int
}

func (p *parser) parseExpression() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}

	for !p.atEnd() {
		operator := p.peek()
		if operator != '+' && operator != '-' {
			break
		}
		p.position++

		right, err := p.parseTerm()
		if err != nil {
			return 0, err
		}

		if operator == '+' {
			left += right
		} else {
			left -= right
		}
	}

	return left, nil
}

func (p *parser) parseTerm() (float64, error) {
	left, err := p.parseFactor()
	if err != nil {
		return 0, err
	}

	for !p.atEnd() {
		operator := p.peek()
		if operator != '*' && operator != '/' {
			break
		}
		p.position++

		right, err := p.parseFactor()
		if err != nil {
			return 0, err
		}

		if operator == '*' {
			left *= right
		} else {
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			left /= right
		}
	}

	return left, nil
}

func (p *parser) parseFactor() (float64, error) {
	if p.atEnd() {
		return 0, fmt.Errorf("unexpected end of expression")
	}

	switch p.peek() {
	case '-':
		p.position++
		value, err := p.parseFactor()
		return -value, err

	case '(':
		p.position++
		value, err := p.parseExpression()
		if err != nil {
			return 0, err
		}
		if p.atEnd() || p.peek() != ')' {
			return 0, fmt.Errorf("missing closing parenthesis")
		}
		p.position++
		return value, nil
	}

	return p.parseNumber()
}

func (p *parser) parseNumber() (float64, error) {
	start := p.position
	for !p.atEnd() {
		character := p.peek()
		if (character < '0' || character > '9') && character != '.' {
			break
		}
		p.position++
	}

	if start == p.position {
		return 0, fmt.Errorf("expected a number at position %d", start)
	}

	value, err := strconv.ParseFloat(p.input[start:p.position], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", p.input[start:p.position])
	}
	return value, nil
}

func (p *parser) atEnd() bool {
	return p.position >= len(p.input)
}

func (p *parser) peek() byte {
	return p.input[p.position]
}
