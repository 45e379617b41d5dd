package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"east/internal/beast2"
	"east/internal/east"
	"east/internal/etext"
)

var viewCmd = &cobra.Command{
	Use:   "view [flags] in",
	Short: "Browse a decoded value interactively",
	Long:  `View decodes a Beast2 payload and opens a collapsible value tree. Full-format streams carry their own schema; plain payloads need -t`,
	Args:  cobra.ExactArgs(1),
	RunE:  runView,
}

func init() {
	viewCmd.Flags().StringP("type", "t", "", "schema file (unneeded for full-format streams)")
}

func runView(cmd *cobra.Command, args []string) error {
	schemaPath, _ := cmd.Flags().GetString("type")
	data, err := readInput(args[0])
	if err != nil {
		return err
	}

	var v *east.Value
	if len(data) >= len(beast2.Magic) && string(data[:len(beast2.Magic)]) == string(beast2.Magic[:]) {
		t, _, err := beast2.DecodeSchema(data)
		if err != nil {
			return err
		}
		v, err = beast2.DecodeFull(data, t)
		if err != nil {
			return err
		}
	} else {
		if schemaPath == "" {
			return fmt.Errorf("plain payloads need -t")
		}
		t, err := loadSchema(schemaPath)
		if err != nil {
			return fmt.Errorf("failed to load schema: %w", err)
		}
		v, err = beast2.Decode(data, t)
		if err != nil {
			return err
		}
	}

	model := newTreeModel(args[0], v)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout), tea.WithAltScreen())
	_, err = program.Run()
	return err
}

type treeNode struct {
	label    string
	value    *east.Value
	children []*treeNode
	expanded bool
	loaded   bool
	depth    int
}

type treeModel struct {
	title  string
	root   *treeNode
	flat   []*treeNode
	cursor int
	vp     viewport.Model
	ready  bool
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	cursorStyle = lipgloss.NewStyle().Reverse(true)
	kindStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func newTreeModel(title string, v *east.Value) *treeModel {
	root := &treeNode{label: "", value: v, expanded: true}
	m := &treeModel{title: title, root: root}
	m.reflatten()
	return m
}

// childNodes expands a value one level. Children are built lazily so
// cyclic values stay browsable.
func childNodes(n *treeNode) []*treeNode {
	v := n.value
	var out []*treeNode
	add := func(label string, child *east.Value) {
		out = append(out, &treeNode{label: label, value: child, depth: n.depth + 1})
	}
	switch v.Kind() {
	case east.Array, east.Set:
		for i := 0; i < v.Len(); i++ {
			add(strconv.Itoa(i), v.Index(i))
		}
	case east.Dict:
		keys, vals := v.DictKeys(), v.DictValues()
		for i := range keys {
			label, err := etext.Emit(keys[i])
			if err != nil {
				label = keys[i].Kind().String()
			}
			add(label, vals[i])
		}
	case east.Struct:
		for _, name := range v.FieldNames() {
			add(name, v.FieldByName(name))
		}
	case east.Variant:
		add(v.CaseName(), v.Payload())
	case east.Ref:
		add("*", v.Deref())
	}
	return out
}

func hasChildren(v *east.Value) bool {
	switch v.Kind() {
	case east.Array, east.Set:
		return v.Len() > 0
	case east.Dict:
		return len(v.DictKeys()) > 0
	case east.Struct:
		return len(v.FieldNames()) > 0
	case east.Variant, east.Ref:
		return true
	}
	return false
}

func (m *treeModel) reflatten() {
	m.flat = m.flat[:0]
	var walk func(n *treeNode)
	walk = func(n *treeNode) {
		m.flat = append(m.flat, n)
		if !n.expanded {
			return
		}
		if !n.loaded {
			n.children = childNodes(n)
			n.loaded = true
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(m.root)
	if m.cursor >= len(m.flat) {
		m.cursor = len(m.flat) - 1
	}
}

func (m *treeModel) Init() tea.Cmd { return nil }

func (m *treeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.flat)-1 {
				m.cursor++
			}
		case "enter", " ", "right", "l":
			n := m.flat[m.cursor]
			if hasChildren(n.value) {
				n.expanded = !n.expanded
				m.reflatten()
			}
		case "left", "h":
			n := m.flat[m.cursor]
			if n.expanded {
				n.expanded = false
				m.reflatten()
			}
		}
	case tea.WindowSizeMsg:
		if !m.ready {
			m.vp = viewport.New(msg.Width, msg.Height-2)
			m.ready = true
		} else {
			m.vp.Width = msg.Width
			m.vp.Height = msg.Height - 2
		}
	}
	if m.ready {
		m.vp.SetContent(m.renderTree())
		m.scrollToCursor()
	}
	return m, nil
}

func (m *treeModel) scrollToCursor() {
	if m.cursor < m.vp.YOffset {
		m.vp.SetYOffset(m.cursor)
	} else if m.cursor >= m.vp.YOffset+m.vp.Height {
		m.vp.SetYOffset(m.cursor - m.vp.Height + 1)
	}
}

func (m *treeModel) renderTree() string {
	var out string
	for i, n := range m.flat {
		line := renderNode(n)
		if i == m.cursor {
			line = cursorStyle.Render(line)
		}
		out += line + "\n"
	}
	return out
}

func renderNode(n *treeNode) string {
	indent := ""
	for i := 0; i < n.depth; i++ {
		indent += "  "
	}
	marker := "  "
	if hasChildren(n.value) {
		if n.expanded {
			marker = "- "
		} else {
			marker = "+ "
		}
	}
	label := ""
	if n.label != "" {
		label = n.label + ": "
	}
	return indent + marker + label + summarize(n.value)
}

// summarize is the one-line rendering of a node: scalars verbatim,
// containers as kind plus size.
func summarize(v *east.Value) string {
	switch v.Kind() {
	case east.Array, east.Set:
		return kindStyle.Render(v.Kind().String()) + dimStyle.Render(fmt.Sprintf(" (%d)", v.Len()))
	case east.Dict:
		return kindStyle.Render("Dict") + dimStyle.Render(fmt.Sprintf(" (%d)", len(v.DictKeys())))
	case east.Struct:
		return kindStyle.Render("Struct") + dimStyle.Render(fmt.Sprintf(" (%d)", len(v.FieldNames())))
	case east.Variant:
		return kindStyle.Render("Variant")
	case east.Ref:
		return kindStyle.Render("Ref")
	case east.Function, east.AsyncFunction:
		return kindStyle.Render(v.Kind().String())
	}
	s, err := etext.Emit(v)
	if err != nil {
		return kindStyle.Render(v.Kind().String())
	}
	return s
}

func (m *treeModel) View() string {
	if !m.ready {
		return "loading..."
	}
	header := titleStyle.Render(m.title) + dimStyle.Render("  (arrows move, enter toggles, q quits)")
	return header + "\n" + m.vp.View()
}
