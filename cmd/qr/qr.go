// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command qr encodes text as a QR or Micro QR code.
package main

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/unixdj/matrix"
	"github.com/unixdj/matrix/coding"

	"github.com/mattn/go-isatty"
	"github.com/pborman/getopt/v2"
)

var g = struct {
	scale   int            // scale
	border  int            // quiet zone
	rev     bool           // reverse colours
	fn      string         // filename
	format  int            // output file format
	eciflag bool           // UTF-8 ECI flag
	latin1  bool           // Latin-1 byte mode
	upper   bool           // uppercase
	verbose bool           // trace encoding
	multi   bool           // structured append
	opts    matrix.Options // encoder options
}{}

func printUsage(w io.Writer) {
	cl := getopt.CommandLine
	prog := cl.Program()
	ul := make([]string, 1, 4)
	ul[0] = cl.UsageLine() + " [string ...]"
	ml := max(70-len("Usage: ")-1-len(prog), 0)
	for i := 0; len(ul[i]) > ml; i++ {
		s := ul[i]
		n := ml - 1
		for n > 0 && (s[n] != ' ' || s[n+1] != '[') {
			n--
		}
		ul = append(ul, s[n+1:])
		ul[i] = s[:max(n, 0)]
		ml = 60
	}
	fmt.Fprint(w, "QR code generator\nUsage: ", prog, " ",
		strings.Join(ul, "\n          "), `
If no string is given, data is read from standard input and the final
newline is stripped.  Defaults: UTF-8 input and byte mode data, kanji
mode segments enabled, no ECI segment, smallest version, best mask.

`)
	var b bytes.Buffer
	cl.PrintOptions(&b)
	bb := b.Bytes()
	if n := bytes.Index(bb, []byte(" [-1]")); n >= 0 {
		w.Write(bb[:n])
		bb = bb[n+len(" [-1]"):]
	}
	w.Write(bb)
}

type opt func()

func (opt) String() string                    { return "" }
func (o opt) Set(string, getopt.Option) error { o(); return nil }

func usage() {
	printUsage(os.Stderr)
	os.Exit(2)
}

func help() {
	printUsage(os.Stdout)
	os.Exit(0)
}

func version() {
	fmt.Println(`qr version 0.9.0
Copyright (c) 2011 The Go Authors
Copyright (c) 2025 Vadim Vygonets`)
	os.Exit(0)
}

func cformat() {
	if g.opts.Format < matrix.Either {
		g.opts.Format++
	}
}

var formats = []string{
	"png", "pngi", "pbm", "pbmi", "utf8", "utf8i", "ascii", "asciii",
}

var encoders = [...]func(*matrix.Code, io.Writer) error{
	(*matrix.Code).EncodePNG,
	(*matrix.Code).EncodePBM,
	func(c *matrix.Code, w io.Writer) error {
		_, err := fmt.Fprint(w, c)
		return err
	},
	ascii,
}

func parseFlags() {
	getopt.SetUsage(usage)
	getopt.Flag(opt(help), 'h', "show this help").SetFlag()
	getopt.Flag(opt(version), 'V', "print version and copyright").SetFlag()
	getopt.Flag(&g.opts.NoKanji, 'K', "disable kanji mode")
	getopt.Flag(&g.latin1, '1', "encode byte mode segments in Latin-1 "+
		"with an ECI segment")
	getopt.Flag(&g.eciflag, 'e', "encode a UTF-8 ECI segment")
	getopt.Flag(&g.upper, 'i', `ignore case, convert input to uppercase`)
	getopt.Flag(&g.opts.Boost, 'b', "raise error correction level "+
		"while data fits")
	getopt.Flag(&g.verbose, 'x', "trace segments, version and masks "+
		"to standard error")
	getopt.Flag(&g.multi, 'S', "encode a structured append sequence of "+
		"up to 16 QR codes; output files are numbered")
	getopt.Flag(opt(cformat), 'M', "encode a Micro QR code; "+
		"-MM: only if data fits").SetFlag()
	getopt.Flag(&g.border, 'm', `quiet zone modules [4 (2 for Micro)]`,
		"margin")
	fno := getopt.Flag(&g.fn, 'o', `output file, or "-" for `+
		`standard output`, "file")
	eci := getopt.Signed('E', 0, &getopt.SignedLimit{Base: 0, Bits: 21, Min: 0, Max: coding.MaxECI},
		"encode ECI segment with the given value; overrides -1 and -e", "eci")
	mask := getopt.Signed('k', -1, &getopt.SignedLimit{Base: 0, Bits: 8, Min: -1, Max: 7},
		"mask pattern, 0-7 (0-3 for Micro QR)", "mask")
	ver := getopt.String('v', "", "version, 1-40 or M1-M4; "+
		"default: smallest that fits", "ver")
	lev := getopt.Enum('l',
		[]string{"l", "m", "q", "h", "L", "M", "Q", "H"}, "l",
		"error correction level, lowest to highest", "l|m|q|h")
	scale := getopt.Unsigned('s', 4,
		&(getopt.UnsignedLimit{Base: 0, Bits: 28, Min: 1, Max: 1 << 28}),
		`image pixels per module; `+
			`ignored for types utf8[i] and ascii[i]`, "scale")
	ff := getopt.Enum('t', formats, "", `output format, one of: `+
		strings.Join(formats, ", ")+
		`; types with "i" appended have colours inverted; `+
		`if no -o is given and standard output is a TTY, `+
		`default is utf8, otherwise png`, "type")

	getopt.Parse()
	if g.opts.Format == matrix.Micro {
		for _, v := range "1eE" {
			if getopt.IsSet(v) {
				fmt.Fprintf(os.Stderr,
					"-M and -%c are incompatible\n", v)
				usage()
			}
		}
	}
	if g.multi && g.opts.Format == matrix.Micro {
		fmt.Fprintln(os.Stderr, "-M and -S are incompatible")
		usage()
	}
	g.scale = int(*scale)
	l, _ := coding.ParseLevel(*lev)
	g.opts.Level = matrix.Level(l)
	if *ver != "" {
		v, err := coding.ParseVersion(*ver)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%q: bad version\n", *ver)
			usage()
		}
		g.opts.Version = v
		if v.IsMicro() && g.opts.Format == matrix.QR {
			g.opts.Format = matrix.Micro
		}
	}
	if *mask >= 0 {
		g.opts.ForceMask = true
		g.opts.Mask = int(*mask)
	}
	switch {
	case getopt.IsSet('E'):
		g.opts.ECI = int(*eci)
	case g.latin1:
		g.opts.ECI = matrix.Latin1ECI
	case g.eciflag:
		g.opts.ECI = matrix.UTF8ECI
	}
	if !getopt.IsSet('m') {
		g.border = -1
	}
	if *ff == "" {
		if !fno.Seen() && isatty.IsTerminal(uintptr(syscall.Stdout)) {
			*ff = "utf8"
		} else {
			*ff = "png"
		}
	}
	for i, v := range formats {
		if *ff == v {
			g.format = i >> 1
			g.rev = i&1 != 0
			break
		}
	}
	if g.fn == "-" {
		g.fn = ""
	}
}

func main() {
	log.SetFlags(0)
	parseFlags()

	var s string
	if args := getopt.Args(); len(args) != 0 {
		s = strings.Join(args, " ")
	} else {
		var b strings.Builder
		if _, err := io.Copy(&b, os.Stdin); err != nil {
			log.Fatalln(err)
		}
		s, _ = strings.CutSuffix(
			strings.ReplaceAll(b.String(), "\r\n", "\n"), "\n")
	}
	if g.upper {
		s = strings.ToUpper(s)
	}
	if g.multi {
		codes, err := matrix.EncodeSequence(s, &g.opts)
		if err != nil {
			log.Fatalln(err)
		}
		for _, c := range codes {
			if g.verbose {
				log.Printf("symbol %d of %d: version %v-%v, mask %d",
					c.Index+1, c.Total, c.Version, c.Level, c.Mask)
			}
			write(c)
		}
		return
	}
	if g.verbose {
		trace(s)
	}
	c, err := matrix.EncodeOptions(s, &g.opts)
	if err != nil {
		log.Fatalln(err)
	}
	if g.verbose {
		log.Printf("version %v-%v, mask %d, scores %v",
			c.Version, c.Level, c.Mask, c.Scores)
	}
	write(c)
}

// trace logs the segments s is split into.
func trace(s string) {
	segs, v, l, err := matrix.Segments(s, &g.opts)
	if err != nil {
		log.Fatalln(err)
	}
	n := 0
	for _, seg := range segs {
		bits := seg.EncodedLength(v.SizeClass())
		n += bits
		log.Printf("%-12s %4d bytes %5d bits", seg.Mode, len(seg.Text), bits)
	}
	log.Printf("%d bits of %d in version %v-%v", n, v.DataBits(coding.Level(l)), v, l)
}

func write(c *matrix.Code) {
	fn := g.fn
	if fn != "" && c.Total > 0 {
		ext := filepath.Ext(fn)
		fn = fmt.Sprintf("%s-%02d%s", fn[:len(fn)-len(ext)], c.Index+1, ext)
	}
	var w = os.Stdout
	if fn != "" {
		var err error
		if w, err = os.OpenFile(fn, os.O_WRONLY|os.O_CREATE|os.O_TRUNC,
			0666); err != nil {
			log.Fatalln(err)
		}
	}
	c.Scale = g.scale
	c.Reverse = g.rev
	if g.border >= 0 {
		c.Border = g.border
	}
	err := encoders[g.format](c, w)
	if fn != "" && err == nil {
		err = w.Close()
	}
	if err != nil {
		log.Fatalln(err)
	}
}

func ascii(c *matrix.Code, w io.Writer) error {
	siz := c.Size
	bord := c.Border
	pix := siz + 2*bord
	b := make([]byte, 0, (pix*2+1)*pix)
	for y := -bord; y < siz+bord; y++ {
		for x := -bord; x < siz+bord; x++ {
			p := " "
			if c.Black(x, y) != c.Reverse {
				p = "#"
			}
			b = append(b, p+p...)
		}
		b = append(b, '\n')
	}
	_, err := w.Write(b)
	return err
}
