package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/npillmayer/parashape/core"
	"github.com/npillmayer/parashape/core/dimen"
	"github.com/npillmayer/parashape/core/font"
	"github.com/npillmayer/parashape/core/font/fallback"
	"github.com/npillmayer/parashape/core/locate/resources"
	"github.com/npillmayer/parashape/engine/hyphenation"
	"github.com/npillmayer/parashape/engine/linebreak"
	"github.com/npillmayer/parashape/engine/measure"
	"github.com/npillmayer/parashape/engine/paragraph"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
	"golang.org/x/text/unicode/norm"
)

// tracer traces with key 'parashape.cli'
func tracer() tracing.Trace {
	return tracing.Select("parashape.cli")
}

func main() {
	initDisplay()

	// command line flags
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	fontname := flag.String("font", "", "Font to use instead of the Go fonts")
	width := flag.String("width", "300px", "Line width, e.g. 300px or 8cm")
	strategy := flag.String("strategy", "high-quality", "Line breaking [greedy|high-quality|balanced]")
	hyph := flag.String("hyphenation", "normal", "Hyphenation frequency [none|normal|full]")
	justify := flag.Bool("justify", false, "Justify lines")
	flag.Parse()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":           "go",
		"trace.parashape.cli":       *tlevel,
		"trace.parashape.paragraph": *tlevel,
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())
	pterm.Info.Println("Welcome to the paragraph CLI")
	tracer().Infof("Trace level is %s", *tlevel)
	//
	intp := &Intp{justified: *justify}
	var err error
	if intp.width, err = dimen.ParseLength(*width, 0); err != nil {
		tracer().Errorf(err.Error())
		os.Exit(2)
	}
	if intp.strategy, err = parseStrategy(*strategy); err != nil {
		tracer().Errorf(err.Error())
		os.Exit(2)
	}
	if intp.frequency, err = parseFrequency(*hyph); err != nil {
		tracer().Errorf(err.Error())
		os.Exit(2)
	}
	if intp.engine, err = createEngine(*fontname); err != nil {
		tracer().Errorf(err.Error())
		os.Exit(4)
	}
	//
	// set up REPL
	if intp.repl, err = readline.New("par > "); err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	defer intp.repl.Close()
	pterm.Info.Println("Type a paragraph, or :help. Quit with <ctrl>D")
	intp.REPL()
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// createEngine sets up an engine with the Go fonts. A font given by name
// is put in front of them, with the Go fonts as fallback.
func createEngine(fontname string) (*paragraph.Engine, error) {
	gofam, err := resources.GoFamily(font.FamilyConfig{})
	if err != nil {
		return nil, err
	}
	families := []*font.Family{gofam}
	if fontname != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		tf, err := resources.ResolveTypeface(fontname, font.DefaultStyle()).TypefaceContext(ctx)
		if err != nil {
			return nil, err
		}
		fam, err := font.NewFamily([]*font.Font{font.NewFont(tf)}, font.FamilyConfig{})
		if err != nil {
			return nil, err
		}
		families = append([]*font.Family{fam}, families...)
		pterm.Info.Printfln("Using font %s", tf.Name())
	}
	collection, err := fallback.NewCollection(families)
	if err != nil {
		return nil, err
	}
	return paragraph.NewEngine(collection)
}

// Intp is our interpreter object
type Intp struct {
	repl      *readline.Instance
	engine    *paragraph.Engine
	width     dimen.Dimen
	strategy  linebreak.Strategy
	frequency linebreak.HyphenationFrequency
	justified bool
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			quit, err := intp.execute(strings.Fields(line[1:]))
			if err != nil {
				pterm.Error.Println(err.Error())
			}
			if quit {
				break
			}
			continue
		}
		if err := intp.typeset(norm.NFC.String(line)); err != nil {
			pterm.Error.Println(err.Error())
		}
	}
	pterm.Info.Println("Good bye!")
}

func (intp *Intp) execute(cmd []string) (bool, error) {
	if len(cmd) == 0 {
		return false, nil
	}
	arg := ""
	if len(cmd) > 1 {
		arg = cmd[1]
	}
	var err error
	switch strings.ToLower(cmd[0]) {
	case "quit", "q":
		return true, nil
	case "width", "w":
		var w dimen.Dimen
		if w, err = dimen.ParseLength(arg, intp.width); err == nil {
			intp.width = w
		}
	case "strategy", "s":
		intp.strategy, err = parseStrategy(arg)
	case "hyphenation", "h":
		intp.frequency, err = parseFrequency(arg)
	case "justify", "j":
		intp.justified = !intp.justified
	case "settings":
	default:
		help()
		return false, nil
	}
	pterm.Info.Printfln("width=%v strategy=%s hyphenation=%s justified=%v",
		intp.width, intp.strategy, intp.frequency, intp.justified)
	return false, err
}

func (intp *Intp) typeset(text string) error {
	e := intp.engine
	p := e.NewParagraph([]rune(text))
	p.Justified = intp.justified
	if _, err := e.Itemize(p, font.DefaultStyle(), "", font.VariantDefault); err != nil {
		return err
	}
	if _, err := e.Measure(p, nil); err != nil {
		return err
	}
	lines, err := e.BreakLines(p, linebreak.ConstantWidth(intp.width.Pixels()), intp.strategy, intp.frequency)
	if err != nil {
		return err
	}
	data := pterm.TableData{{"#", "range", "width", "line"}}
	for l := 0; l < lines.Len(); l++ {
		rng := lines.Line(l)
		edit := lines.Flags[l].Edit()
		visible := measure.TrimTrailingLineEndSpaces(p.Text, rng)
		if edit.End() == hyphenation.ReplaceWithHyphen && !visible.IsEmpty() {
			visible.End--
		}
		var b strings.Builder
		b.WriteString(string(hyphenation.StartString(edit.Start())))
		b.WriteString(string(p.Text[visible.Start:visible.End]))
		b.WriteString(string(hyphenation.EndString(edit.End())))
		data = append(data, []string{
			strconv.Itoa(l + 1),
			rng.String(),
			strconv.FormatFloat(float64(lines.Widths[l]), 'f', 1, 32),
			b.String(),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func parseStrategy(s string) (linebreak.Strategy, error) {
	for _, st := range []linebreak.Strategy{linebreak.Greedy, linebreak.HighQuality, linebreak.Balanced} {
		if strings.EqualFold(s, st.String()) {
			return st, nil
		}
	}
	return linebreak.HighQuality, core.Error(core.EINVALID, "unknown line breaking strategy %q", s)
}

func parseFrequency(s string) (linebreak.HyphenationFrequency, error) {
	for _, f := range []linebreak.HyphenationFrequency{linebreak.HyphenationNone,
		linebreak.HyphenationNormal, linebreak.HyphenationFull} {
		if strings.EqualFold(s, f.String()) {
			return f, nil
		}
	}
	return linebreak.HyphenationNormal, core.Error(core.EINVALID, "unknown hyphenation frequency %q", s)
}

func help() {
	pterm.Info.Println(`Enter text to break it into lines, or one of
  :width <length>       set the line width, e.g. 8cm or 80%
  :strategy <s>         greedy, high-quality or balanced
  :hyphenation <f>      none, normal or full
  :justify              toggle justification
  :settings             show settings
  :quit                 leave`)
}
