package cgen

import "strconv"

// declarator is the part of a C declaration around the name hole, e.g.
// `(*arg0)[4]` in `uint8_t (*arg0)[4]`. Wrappers compose inside-out, the
// same way C reads them.
type declarator struct {
	text string
	// prefixed is set when text starts with a pointer star, so a postfix
	// wrapper must parenthesise it.
	prefixed bool
}

// named starts a declarator from an identifier.
func named(name string) declarator {
	return declarator{text: name}
}

// abstract is the empty declarator used for casts and typedef targets.
func abstract() declarator {
	return declarator{}
}

// pointer makes d a pointer to the type being declared.
func (d declarator) pointer() declarator {
	return declarator{text: "*" + d.text, prefixed: true}
}

// array makes d an array of n elements.
func (d declarator) array(n uint64) declarator {
	return d.postfix("[" + strconv.FormatUint(n, 10) + "]")
}

// flexible makes d a flexible array member.
func (d declarator) flexible() declarator {
	return d.postfix("[]")
}

// call makes d a function taking params.
func (d declarator) call(params string) declarator {
	return d.postfix("(" + params + ")")
}

func (d declarator) postfix(suffix string) declarator {
	if d.prefixed {
		return declarator{text: "(" + d.text + ")" + suffix}
	}
	return declarator{text: d.text + suffix}
}

func (d declarator) isEmpty() bool {
	return d.text == ""
}

// declare joins a base type and a declarator.
func declare(base string, d declarator) string {
	if d.isEmpty() {
		return base
	}
	return base + " " + d.text
}
