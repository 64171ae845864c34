// Copyright 2024 The ieformats Authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package restype implements the bidirectional mapping between the 16-bit
// resource type codes used throughout Infinity Engine data files and
// their symbolic names / file extensions.
package restype

import (
	"encoding/json"
	"fmt"
)

// Code is a 16-bit resource type code as stored in KEY/BIFF entries.
type Code uint16

// Known resource type codes.
const (
	Bmp      Code = 0x001
	Mve      Code = 0x002
	Wav      Code = 0x004
	Wfx      Code = 0x005
	Plt      Code = 0x006
	Tga      Code = 0x3B8
	Bam      Code = 0x3E8
	Wed      Code = 0x3E9
	Chu      Code = 0x3EA
	Tis      Code = 0x3EB
	Mos      Code = 0x3EC
	Itm      Code = 0x3ED
	Spl      Code = 0x3EE
	Bcs      Code = 0x3EF
	Ids      Code = 0x3F0
	Cre      Code = 0x3F1
	Are      Code = 0x3F2
	Dlg      Code = 0x3F3
	Two      Code = 0x3F4
	Gam      Code = 0x3F5
	Sto      Code = 0x3F6
	Wmp      Code = 0x3F7
	Eff      Code = 0x3F8
	Bs       Code = 0x3F9
	Chr      Code = 0x3FA
	Vvc      Code = 0x3FB
	Vef      Code = 0x3FC
	Pro      Code = 0x3FD
	Bio      Code = 0x3FE
	Wbm      Code = 0x3FF
	Fnt      Code = 0x400
	Gui      Code = 0x402
	Sql      Code = 0x403
	Pvrz     Code = 0x404
	Glsl     Code = 0x405
	Tot      Code = 0x406
	Toh      Code = 0x407
	Menu     Code = 0x408
	Lua      Code = 0x409
	Ttf      Code = 0x40A
	Png      Code = 0x40B
	Bah      Code = 0x44C
	Ini      Code = 0x802
	Src      Code = 0x803
	Maze     Code = 0x804
	Mus      Code = 0xFFE
	Acm      Code = 0xFFF
)

type entry struct {
	name string
	ext  string
}

var table = map[Code]entry{
	Bmp:  {"BMP", "bmp"},
	Mve:  {"MVE", "mve"},
	Wav:  {"WAV", "wav"},
	Wfx:  {"WFX", "wfx"},
	Plt:  {"PLT", "plt"},
	Tga:  {"TGA", "tga"},
	Bam:  {"BAM", "bam"},
	Wed:  {"WED", "wed"},
	Chu:  {"CHU", "chu"},
	Tis:  {"TIS", "tis"},
	Mos:  {"MOS", "mos"},
	Itm:  {"ITM", "itm"},
	Spl:  {"SPL", "spl"},
	Bcs:  {"BCS", "bcs"},
	Ids:  {"IDS", "ids"},
	Cre:  {"CRE", "cre"},
	Are:  {"ARE", "are"},
	Dlg:  {"DLG", "dlg"},
	Two:  {"2DA", "2da"},
	Gam:  {"GAM", "gam"},
	Sto:  {"STO", "sto"},
	Wmp:  {"WMP", "wmp"},
	Eff:  {"EFF", "eff"},
	Bs:   {"BS", "bs"},
	Chr:  {"CHR", "chr"},
	Vvc:  {"VVC", "vvc"},
	Vef:  {"VEF", "vef"},
	Pro:  {"PRO", "pro"},
	Bio:  {"BIO", "bio"},
	Wbm:  {"WBM", "wbm"},
	Fnt:  {"FNT", "fnt"},
	Gui:  {"GUI", "gui"},
	Sql:  {"SQL", "sql"},
	Pvrz: {"PVRZ", "pvrz"},
	Glsl: {"GLSL", "glsl"},
	Tot:  {"TOT", "tot"},
	Toh:  {"TOH", "toh"},
	Menu: {"MENU", "menu"},
	Lua:  {"LUA", "lua"},
	Ttf:  {"TTF", "ttf"},
	Png:  {"PNG", "png"},
	Bah:  {"BAH", "bah"},
	Ini:  {"INI", "ini"},
	Src:  {"SRC", "src"},
	Maze: {"MAZE", "maze"},
	Mus:  {"MUS", "mus"},
	Acm:  {"ACM", "acm"},
}

var byName = func() map[string]Code {
	m := make(map[string]Code, len(table))
	for code, e := range table {
		m[e.name] = code
	}
	return m
}()

// Type is a resolved resource type: either one of the fixed known codes,
// or the catch-all Unknown variant preserving the raw code.
type Type struct {
	code Code
}

// FromCode resolves a raw 16-bit code to a Type. Unknown codes are
// preserved verbatim rather than rejected.
func FromCode(code uint16) Type {
	return Type{code: Code(code)}
}

// Code returns the original 16-bit code; round-trips with FromCode.
func (t Type) Code() uint16 { return uint16(t.code) }

// Known reports whether the code is one of the fixed enumerated types.
func (t Type) Known() bool {
	_, ok := table[t.code]
	return ok
}

// String returns the symbolic name, or "UNKNOWN(0x%04X)" for codes
// outside the known table.
func (t Type) String() string {
	if e, ok := table[t.code]; ok {
		return e.name
	}
	return fmt.Sprintf("UNKNOWN(0x%04X)", uint16(t.code))
}

// Extension returns the conventional lowercase file extension for the
// type, or "bin" for codes outside the known table.
func (t Type) Extension() string {
	if e, ok := table[t.code]; ok {
		return e.ext
	}
	return "bin"
}

// ParseName resolves a symbolic name (e.g. "BAM") back to its Type. The
// second return value is false for names outside the known table.
func ParseName(name string) (Type, bool) {
	code, ok := byName[name]
	if !ok {
		return Type{}, false
	}
	return Type{code: code}, true
}

// MarshalJSON renders a Type by its symbolic name (or UNKNOWN(0x%04X))
// rather than the bare numeric code, matching String.
func (t Type) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}
