package pcg815

import (
	"strings"
	"unicode"
)

const (
	kanaN      byte = 0xDD // ン
	kanaSokuon byte = 0xAF // ッ
)

// romajiTable maps a romaji prefix to the half-width katakana byte
// sequence it produces. Longest-prefix matching in kanaComposer.flush
// means multi-character entries ("shi", "chi") are tried before their
// single-character ambiguous prefixes.
var romajiTable = buildRomajiTable()

func buildRomajiTable() map[string][]byte {
	t := map[string][]byte{
		"a": {0xB1}, "i": {0xB2}, "u": {0xB3}, "e": {0xB4}, "o": {0xB5},
		"ka": {0xB6}, "ki": {0xB7}, "ku": {0xB8}, "ke": {0xB9}, "ko": {0xBA},
		"sa": {0xBB}, "shi": {0xBC}, "su": {0xBD}, "se": {0xBE}, "so": {0xBF},
		"ta": {0xC0}, "chi": {0xC1}, "tsu": {0xC2}, "te": {0xC3}, "to": {0xC4},
		"na": {0xC5}, "ni": {0xC6}, "nu": {0xC7}, "ne": {0xC8}, "no": {0xC9},
		"ha": {0xCA}, "hi": {0xCB}, "fu": {0xCC}, "he": {0xCD}, "ho": {0xCE},
		"ma": {0xCF}, "mi": {0xD0}, "mu": {0xD1}, "me": {0xD2}, "mo": {0xD3},
		"ya": {0xD4}, "yu": {0xD5}, "yo": {0xD6},
		"ra": {0xD7}, "ri": {0xD8}, "ru": {0xD9}, "re": {0xDA}, "ro": {0xDB},
		"wa": {0xDC}, "wo": {0xA6},
		"ga": {0xB6, 0xDE}, "gi": {0xB7, 0xDE}, "gu": {0xB8, 0xDE}, "ge": {0xB9, 0xDE}, "go": {0xBA, 0xDE},
		"za": {0xBB, 0xDE}, "ji": {0xBC, 0xDE}, "zu": {0xBD, 0xDE}, "ze": {0xBE, 0xDE}, "zo": {0xBF, 0xDE},
		"da": {0xC0, 0xDE}, "di": {0xC1, 0xDE}, "du": {0xC2, 0xDE}, "de": {0xC3, 0xDE}, "do": {0xC4, 0xDE},
		"ba": {0xCA, 0xDE}, "bi": {0xCB, 0xDE}, "bu": {0xCC, 0xDE}, "be": {0xCD, 0xDE}, "bo": {0xCE, 0xDE},
		"pa": {0xCA, 0xDF}, "pi": {0xCB, 0xDF}, "pu": {0xCC, 0xDF}, "pe": {0xCD, 0xDF}, "po": {0xCE, 0xDF},
	}
	return t
}

var longestRomajiKey = func() int {
	max := 0
	for k := range romajiTable {
		if len(k) > max {
			max = len(k)
		}
	}
	return max
}()

func isSokuonConsonant(b byte) bool {
	switch b {
	case 'a', 'e', 'i', 'o', 'u', 'n':
		return false
	}
	return b >= 'a' && b <= 'z'
}

// kanaComposer implements the romaji flush algorithm of spec.md §4.4: a
// pending-letters buffer drained into half-width katakana bytes by
// longest-prefix match against romajiTable, with the "nn"/sokuon special
// cases checked first.
type kanaComposer struct {
	buf string
}

func (k *kanaComposer) append(c byte) {
	k.buf += string(c)
}

// flush drains as much of the buffer as the algorithm allows. With
// force=false it stops and waits once the remaining buffer could still
// extend into a longer table match; force=true drains unconditionally.
func (k *kanaComposer) flush(force bool) []byte {
	var out []byte
	for len(k.buf) > 0 {
		if strings.HasPrefix(k.buf, "nn") {
			out = append(out, kanaN)
			k.buf = k.buf[1:]
			continue
		}
		if len(k.buf) >= 2 && k.buf[0] == k.buf[1] && isSokuonConsonant(k.buf[0]) {
			out = append(out, kanaSokuon)
			k.buf = k.buf[1:]
			continue
		}
		if matched, bytes, ok := k.longestMatch(); ok {
			if !force && k.hasLongerKeyStartingWith(matched) {
				return out
			}
			out = append(out, bytes...)
			k.buf = k.buf[len(matched):]
			continue
		}
		if !force && (k.buf == "n" || k.isPrefixOfAnyKey()) {
			return out
		}
		c := k.buf[0]
		k.buf = k.buf[1:]
		if c == 'n' {
			out = append(out, kanaN)
		} else {
			out = append(out, byte(unicode.ToUpper(rune(c))))
		}
	}
	return out
}

func (k *kanaComposer) longestMatch() (string, []byte, bool) {
	limit := longestRomajiKey
	if len(k.buf) < limit {
		limit = len(k.buf)
	}
	for n := limit; n >= 1; n-- {
		if v, ok := romajiTable[k.buf[:n]]; ok {
			return k.buf[:n], v, true
		}
	}
	return "", nil, false
}

func (k *kanaComposer) hasLongerKeyStartingWith(matched string) bool {
	for key := range romajiTable {
		if len(key) > len(matched) && strings.HasPrefix(key, matched) {
			return true
		}
	}
	return false
}

func (k *kanaComposer) isPrefixOfAnyKey() bool {
	for key := range romajiTable {
		if strings.HasPrefix(key, k.buf) {
			return true
		}
	}
	return false
}

// empty reports whether the compose buffer holds no pending letters,
// matching invariant 8 of spec.md §8: "the kana composer is empty after
// any flush(force=true)".
func (k *kanaComposer) empty() bool { return k.buf == "" }
