package gen

import (
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
)

var (
	rules    = ruleset()
	acronyms = make(map[string]struct{})
)

func ruleset() *inflect.Ruleset {
	rules := inflect.NewDefaultRuleset()
	// Common initialisms from golint.
	for _, w := range []string{
		"ACL", "API", "ASCII", "CPU", "CSS", "DNS", "EOF", "GUID",
		"HTML", "HTTP", "HTTPS", "ID", "IP", "JSON", "LHS", "RHS",
		"RPC", "SQL", "SSH", "TCP", "TLS", "TTL", "UDP", "UI", "UID",
		"URI", "URL", "UTF8", "UUID", "VM", "XML", "XSRF", "XSS",
	} {
		acronyms[w] = struct{}{}
		rules.AddAcronym(w)
	}
	return rules
}

// AddAcronym registers an acronym kept upper-cased in Go identifiers.
func AddAcronym(word string) {
	word = strings.ToUpper(word)
	acronyms[word] = struct{}{}
	rules.AddAcronym(word)
}

// isSeparator reports whether r separates words in a name.
func isSeparator(r rune) bool {
	return r == '_' || r == '-' || unicode.IsSpace(r)
}

// pascal converts the given name into PascalCase.
//
//	user_info 	=> UserInfo
//	born_when 	=> BornWhen
//	head_uuid 	=> HeadUUID
//	full-admin	=> FullAdmin
func pascal(s string) string {
	return pascalWords(strings.FieldsFunc(s, isSeparator))
}

func pascalWords(words []string) string {
	for i, w := range words {
		upper := strings.ToUpper(w)
		if _, ok := acronyms[upper]; ok {
			words[i] = upper
		} else {
			words[i] = rules.Capitalize(w)
		}
	}
	return strings.Join(words, "")
}

// camel converts the given name into camelCase. It is the JSON name of a
// variant field.
//
//	modified_when => modifiedWhen
//	head_uuid     => headUUID
func camel(s string) string {
	words := strings.FieldsFunc(s, isSeparator)
	if len(words) == 0 {
		return ""
	}
	if len(words) == 1 {
		return strings.ToLower(words[0])
	}
	return strings.ToLower(words[0]) + pascalWords(words[1:])
}

// goName returns the Go identifier of a model or binding name.
//
//	Identification[Person]        => IdentificationPerson
//	Pair[Person, Place]           => PairPersonPlace
//	Owner[Person | Organisation]  => OwnerPersonOrOrganisation
func goName(name string) string {
	r := strings.NewReplacer("[", " ", "]", " ", ",", " ", "|", " Or ")
	var b strings.Builder
	for _, w := range strings.Fields(r.Replace(name)) {
		b.WriteString(rules.Capitalize(w))
	}
	return b.String()
}
