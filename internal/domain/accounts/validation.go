package accounts

import (
	"strings"
	"unicode"
)

const (
	minPasswordLength   = 8
	similarityThreshold = 0.7
)

// Mirrors the head of the common password corpus used by most credential
// stuffing lists; the point is rejecting the obvious, not being exhaustive.
var commonPasswords = map[string]struct{}{
	"123456": {}, "123456789": {}, "12345678": {}, "1234567": {}, "12345": {},
	"1234567890": {}, "password": {}, "password1": {}, "password123": {},
	"qwerty": {}, "qwerty123": {}, "qwertyuiop": {}, "abc123": {}, "111111": {},
	"123123": {}, "654321": {}, "666666": {}, "121212": {}, "letmein": {},
	"welcome": {}, "admin": {}, "iloveyou": {}, "monkey": {}, "dragon": {},
	"sunshine": {}, "princess": {}, "football": {}, "baseball": {},
	"superman": {}, "batman": {}, "trustno1": {}, "shadow": {}, "master": {},
	"michael": {}, "jennifer": {}, "jordan": {}, "hunter": {}, "ranger": {},
	"buster": {}, "soccer": {}, "harley": {}, "charlie": {}, "andrew": {},
	"daniel": {}, "starwars": {}, "computer": {}, "whatever": {}, "pokemon": {},
	"senha123": {}, "mudar123": {},
}

// validatePassword collects every violated strength rule into the supplied
// message list: minimum length, not purely numeric, not a common password and
// not too similar to the username or email.
func validatePassword(password, username, email string) []string {
	var messages []string

	if len(password) < minPasswordLength {
		messages = append(messages, "A senha deve conter pelo menos 8 caracteres.")
	}
	if isEntirelyNumeric(password) {
		messages = append(messages, "A senha não pode ser inteiramente numérica.")
	}
	if _, common := commonPasswords[strings.ToLower(password)]; common {
		messages = append(messages, "Esta senha é muito comum.")
	}
	if tooSimilar(password, username) {
		messages = append(messages, "A senha é muito parecida com o nome de usuário.")
	} else if tooSimilar(password, email) || tooSimilar(password, localPart(email)) {
		messages = append(messages, "A senha é muito parecida com o email.")
	}

	return messages
}

func isEntirelyNumeric(password string) bool {
	if password == "" {
		return false
	}
	for _, r := range password {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func localPart(email string) string {
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}

func tooSimilar(password, attribute string) bool {
	if attribute == "" {
		return false
	}
	return similarity(strings.ToLower(password), strings.ToLower(attribute)) >= similarityThreshold
}

// similarity is 2*LCS/(len(a)+len(b)), a sequence-matcher style ratio in
// [0, 1].
func similarity(a, b string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	ra, rb := []rune(a), []rune(b)
	previous := make([]int, len(rb)+1)
	current := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				current[j] = previous[j-1] + 1
			} else if previous[j] >= current[j-1] {
				current[j] = previous[j]
			} else {
				current[j] = current[j-1]
			}
		}
		previous, current = current, previous
	}
	lcs := previous[len(rb)]
	return 2 * float64(lcs) / float64(len(ra)+len(rb))
}
