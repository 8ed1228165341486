// Package cli is an interactive line loop over the suggestion engine and
// word tools, used for debugging and trying out contexts by hand.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/wordcraft/internal/utils"
	"github.com/bastiangx/wordcraft/pkg/suggest"
	"github.com/bastiangx/wordcraft/pkg/wordtools"
)

// Suggester is the part of the engine the CLI drives.
type Suggester interface {
	Suggest(ctx context.Context, req suggest.Request) suggest.Response
	Contexts(ctx context.Context) []string
}

// Options configure an InputHandler. Zero values fall back to neutral,
// write and the stdio streams.
type Options struct {
	Context   string
	Mode      string
	Limit     int
	ShowNotes bool
	In        io.Reader
	Out       io.Writer
}

// InputHandler reads lines and answers them. Plain text runs the
// suggestion pipeline; lines starting with ':' are commands.
type InputHandler struct {
	engine Suggester
	tools  *wordtools.Tools

	context   string
	mode      string
	limit     int
	showNotes bool

	in           io.Reader
	out          io.Writer
	requestCount int
}

// NewInputHandler creates a handler over engine and tools. tools may be
// nil, which disables the word commands.
func NewInputHandler(engine Suggester, tools *wordtools.Tools, opts Options) *InputHandler {
	h := &InputHandler{
		engine:    engine,
		tools:     tools,
		context:   opts.Context,
		mode:      suggest.NormalizeMode(opts.Mode),
		limit:     opts.Limit,
		showNotes: opts.ShowNotes,
		in:        opts.In,
		out:       opts.Out,
	}
	if h.context == "" {
		h.context = "neutral"
	}
	if h.in == nil {
		h.in = os.Stdin
	}
	if h.out == nil {
		h.out = os.Stdout
	}
	return h
}

// Start runs the loop until the input ends or a quit command.
func (h *InputHandler) Start(ctx context.Context) error {
	fmt.Fprintln(h.out, titleStyle.Render("wordcraft CLI"))
	fmt.Fprintln(h.out, "type a sentence (use ____ for a blank) or :help, Ctrl+C to exit")
	scanner := bufio.NewScanner(h.in)
	for {
		fmt.Fprintf(h.out, "%s > ", promptStyle.Render(h.context+"/"+h.mode))
		if !scanner.Scan() {
			fmt.Fprintln(h.out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if quit := h.handleInput(ctx, line); quit {
			return nil
		}
	}
}

// handleInput answers one line and reports whether the loop should end.
func (h *InputHandler) handleInput(ctx context.Context, line string) bool {
	h.requestCount++
	if strings.HasPrefix(line, ":") {
		return h.handleCommand(ctx, line)
	}
	if !utils.IsValidInput(line) {
		log.Warnf("Ignoring input: %q", line)
		return false
	}
	h.runSuggest(ctx, suggest.Request{Text: line, Context: h.context, Mode: h.mode})
	return false
}

func (h *InputHandler) runSuggest(ctx context.Context, req suggest.Request) {
	start := time.Now()
	resp := h.engine.Suggest(ctx, req)
	log.Debugf("Took [ %v ] for %q", time.Since(start), req.Text)
	renderResponse(h.out, resp, h.showNotes)
}

func (h *InputHandler) handleCommand(ctx context.Context, line string) bool {
	name, arg, _ := strings.Cut(strings.TrimPrefix(line, ":"), " ")
	arg = strings.TrimSpace(arg)
	switch strings.ToLower(name) {
	case "q", "quit", "exit":
		return true
	case "help", "h":
		fmt.Fprint(h.out, helpText)
	case "ctx":
		h.setContext(ctx, arg)
	case "mode":
		if arg == "" {
			fmt.Fprintf(h.out, "mode: %s\n", h.mode)
			break
		}
		h.mode = suggest.NormalizeMode(arg)
		fmt.Fprintf(h.out, "mode set to %s\n", h.mode)
	case "limit":
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 {
			log.Errorf("Invalid limit: %q", arg)
			break
		}
		h.limit = n
	case "notes":
		h.showNotes = !h.showNotes
		fmt.Fprintf(h.out, "notes: %v\n", h.showNotes)
	case "sel":
		h.runSelection(ctx, arg)
	case "syn":
		h.runLexical(ctx, wordtools.TaskSynonyms, arg)
	case "ant":
		h.runLexical(ctx, wordtools.TaskAntonyms, arg)
	case "rhyme":
		h.runLexical(ctx, wordtools.TaskRhymes, arg)
	case "homo":
		h.runLexical(ctx, wordtools.TaskHomonyms, arg)
	case "one":
		if h.requireTools() {
			renderWords(h.out, h.tools.OneWord(ctx, wordtools.OneWordRequest{Query: arg, Context: h.context, Limit: h.limit}), h.showNotes)
		}
	case "con":
		h.runConstraints(ctx, arg)
	default:
		log.Errorf("Unknown command: %s (try :help)", name)
	}
	return false
}

func (h *InputHandler) setContext(ctx context.Context, key string) {
	keys := h.engine.Contexts(ctx)
	if key == "" {
		fmt.Fprintf(h.out, "context: %s\navailable: %s\n", h.context, strings.Join(keys, ", "))
		return
	}
	key = strings.ToLower(key)
	for _, k := range keys {
		if k == key {
			h.context = key
			fmt.Fprintf(h.out, "context set to %s\n", key)
			return
		}
	}
	log.Errorf("Unknown context %q, available: %s", key, strings.Join(keys, ", "))
}

// runSelection handles ":sel <word> <sentence>", selecting the first
// occurrence of word in the sentence.
func (h *InputHandler) runSelection(ctx context.Context, arg string) {
	word, text, ok := strings.Cut(arg, " ")
	text = strings.TrimSpace(text)
	if !ok || text == "" {
		log.Error("Usage: :sel <word> <sentence>")
		return
	}
	start := strings.Index(text, word)
	if start < 0 {
		log.Errorf("%q does not occur in the sentence", word)
		return
	}
	h.runSuggest(ctx, suggest.Request{
		Text:      text,
		Context:   h.context,
		Mode:      h.mode,
		Selection: &suggest.Selection{Text: word, Start: start, End: start + len(word)},
	})
}

func (h *InputHandler) runLexical(ctx context.Context, task, word string) {
	if !h.requireTools() {
		return
	}
	if !utils.IsValidInput(word) {
		log.Errorf("Usage: :%s <word>", commandFor[task])
		return
	}
	res, err := h.tools.Lexical(ctx, wordtools.LexicalRequest{Word: word, Task: task, Context: h.context, Limit: h.limit})
	if err != nil {
		log.Errorf("Lexical lookup failed: %v", err)
		return
	}
	renderWords(h.out, res, h.showNotes)
}

// runConstraints handles ":con <rhyme> <syn|ant> <meaning>".
func (h *InputHandler) runConstraints(ctx context.Context, arg string) {
	if !h.requireTools() {
		return
	}
	fields := strings.Fields(arg)
	if len(fields) != 3 {
		log.Error("Usage: :con <rhyme> <syn|ant> <meaning>")
		return
	}
	renderWords(h.out, h.tools.Constraints(ctx, wordtools.ConstraintRequest{
		Rhyme:    fields[0],
		Relation: fields[1],
		Meaning:  fields[2],
		Context:  h.context,
		Limit:    h.limit,
	}), h.showNotes)
}

func (h *InputHandler) requireTools() bool {
	if h.tools == nil {
		log.Error("Word tools are not available")
		return false
	}
	return true
}

var commandFor = map[string]string{
	wordtools.TaskSynonyms: "syn",
	wordtools.TaskAntonyms: "ant",
	wordtools.TaskRhymes:   "rhyme",
	wordtools.TaskHomonyms: "homo",
}

const helpText = `commands:
  <sentence>                 suggest words, ____ marks a blank
  :sel <word> <sentence>     suggest replacements for word
  :ctx [key]                 show or set the tone context
  :mode [write|edit|rewrite] show or set the mode
  :syn|:ant|:rhyme|:homo <w> lexical lookups
  :one <description>         one-word substitution
  :con <rhyme> <syn|ant> <w> rhyme plus meaning
  :limit <n>  :notes  :quit
`
