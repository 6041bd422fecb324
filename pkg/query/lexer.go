package query

import (
	"strings"
	"unicode"

	lsmerrors "github.com/arrowdb/lsmdb/pkg/errors"
)

// tokenize splits a statement into words, punctuation, operators, and
// quoted string literals (which are kept intact, quotes included, so
// the codec and schema validation can see them the same way a literal
// typed at the REPL would arrive).
func tokenize(stmt string) ([]string, error) {
	var tokens []string
	r := []rune(stmt)
	i := 0
	for i < len(r) {
		c := r[i]
		switch {
		case unicode.IsSpace(c):
			i++
		case c == '\'' || c == '"':
			quote := c
			j := i + 1
			for j < len(r) && r[j] != quote {
				j++
			}
			if j >= len(r) {
				return nil, &lsmerrors.SyntaxError{Statement: stmt}
			}
			tokens = append(tokens, string(r[i:j+1]))
			i = j + 1
		case c == '(' || c == ')' || c == ',' || c == '*':
			tokens = append(tokens, string(c))
			i++
		case c == '=' || c == '<' || c == '>' || c == '!':
			j := i + 1
			if j < len(r) && r[j] == '=' {
				j++
			} else if c == '<' && j < len(r) && r[j] == '>' {
				j++
			}
			tokens = append(tokens, string(r[i:j]))
			i = j
		default:
			j := i
			for j < len(r) && !unicode.IsSpace(r[j]) && r[j] != '(' && r[j] != ')' && r[j] != ',' &&
				r[j] != '=' && r[j] != '<' && r[j] != '>' && r[j] != '!' {
				j++
			}
			tokens = append(tokens, string(r[i:j]))
			i = j
		}
	}
	return tokens, nil
}

func upper(tok string) string {
	return strings.ToUpper(tok)
}
