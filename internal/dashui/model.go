// Package dashui provides the Bubble Tea employee dashboard.
package dashui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/empdash/internal/dashboard"
	"github.com/verte-zerg/empdash/internal/export"
	"github.com/verte-zerg/empdash/internal/filter"
	"github.com/verte-zerg/empdash/internal/model"
	"github.com/verte-zerg/empdash/internal/stats"
)

const (
	tabOverview = iota
	tabCharts
	tabData
)

const (
	inputDepartments = iota
	inputSalaryMin
	inputSalaryMax
	inputPerfMin
	inputPerfMax
	inputYearMin
	inputYearMax
	inputName
)

const maxDataColumnWidth = 28

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	sectionStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C0C0C0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea dashboard.
type Model struct {
	session    *dashboard.Session
	exportPath string

	spec      model.FilterSpec
	view      dashboard.View
	errMsg    string
	statusMsg string

	tabs      []string
	activeTab int
	viewports []viewport.Model
	dataTable table.Model

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string
}

// NewModel constructs a dashboard model over a loaded session.
func NewModel(session *dashboard.Session, exportPath string) *Model {
	if exportPath == "" {
		exportPath = export.DefaultFilename
	}
	m := &Model{
		session:    session,
		exportPath: exportPath,
		tabs:       []string{"Overview", "Charts", "Data"},
	}
	m.initInputs()
	m.initViewports()
	m.dataTable = buildDataTable(model.Table{}, 0, 1)
	m.resetSpec()
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		if m.activeTab == tabData {
			m.dataTable.Focus()
		} else {
			m.dataTable.Blur()
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "/":
			return m.startFilter()
		case "c":
			m.resetSpec()
			m.statusMsg = "Filters reset."
			m.refresh()
			return m, nil
		case "e":
			m.exportView()
			return m, nil
		case "r":
			m.reload()
			return m, nil
		case "g", "home":
			if m.activeTab == tabData {
				m.dataTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabData {
				m.dataTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabData {
				var cmd tea.Cmd
				m.dataTable, cmd = m.dataTable.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) initInputs() {
	m.filterInputs = []textinput.Model{
		newFilterInput("Departments: "),
		newFilterInput("Salary min: "),
		newFilterInput("Salary max: "),
		newFilterInput("Performance min: "),
		newFilterInput("Performance max: "),
		newFilterInput("Year joined min: "),
		newFilterInput("Year joined max: "),
		newFilterInput("Name contains: "),
	}
	m.filterInputs[inputDepartments].Placeholder = "comma separated, empty selects none"
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) resetSpec() {
	spec, err := m.session.DefaultSpec()
	if err != nil {
		m.spec = model.FilterSpec{}
		return
	}
	m.spec = spec
}

func (m *Model) setInputsFromSpec() {
	values := specInputs(m.spec)
	for i := range m.filterInputs {
		m.filterInputs[i].SetValue(values[i])
	}
}

// specInputs renders a filter selection as form field values.
func specInputs(spec model.FilterSpec) []string {
	values := make([]string, inputName+1)
	values[inputDepartments] = strings.Join(spec.SelectedDepartments(), ", ")
	if spec.Salary != nil {
		values[inputSalaryMin] = formatFloat(spec.Salary.Min)
		values[inputSalaryMax] = formatFloat(spec.Salary.Max)
	}
	if spec.Performance != nil {
		values[inputPerfMin] = formatFloat(spec.Performance.Min)
		values[inputPerfMax] = formatFloat(spec.Performance.Max)
	}
	if spec.YearJoined != nil {
		values[inputYearMin] = strconv.Itoa(spec.YearJoined.Min)
		values[inputYearMax] = strconv.Itoa(spec.YearJoined.Max)
	}
	values[inputName] = spec.NameQuery
	return values
}

// parseSpec builds a filter selection from form field values. Blank
// range fields take the observed bound.
func parseSpec(values []string, b model.Bounds) (model.FilterSpec, error) {
	field := func(i int) string {
		if i < len(values) {
			return strings.TrimSpace(values[i])
		}
		return ""
	}
	salaryMin, err := parseFloatField(field(inputSalaryMin), b.Salary.Min, "salary min")
	if err != nil {
		return model.FilterSpec{}, err
	}
	salaryMax, err := parseFloatField(field(inputSalaryMax), b.Salary.Max, "salary max")
	if err != nil {
		return model.FilterSpec{}, err
	}
	perfMin, err := parseFloatField(field(inputPerfMin), b.Performance.Min, "performance min")
	if err != nil {
		return model.FilterSpec{}, err
	}
	perfMax, err := parseFloatField(field(inputPerfMax), b.Performance.Max, "performance max")
	if err != nil {
		return model.FilterSpec{}, err
	}
	yearMin, err := parseIntField(field(inputYearMin), b.YearJoined.Min, "year min")
	if err != nil {
		return model.FilterSpec{}, err
	}
	yearMax, err := parseIntField(field(inputYearMax), b.YearJoined.Max, "year max")
	if err != nil {
		return model.FilterSpec{}, err
	}
	return model.FilterSpec{
		Departments: filter.ParseDepartments(field(inputDepartments)),
		Salary:      &model.Range[float64]{Min: salaryMin, Max: salaryMax},
		Performance: &model.Range[float64]{Min: perfMin, Max: perfMax},
		YearJoined:  &model.Range[int]{Min: yearMin, Max: yearMax},
		NameQuery:   field(inputName),
	}, nil
}

func parseFloatField(input string, fallback float64, name string) (float64, error) {
	if input == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(input, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s (use a number)", name)
	}
	return v, nil
}

func parseIntField(input string, fallback int, name string) (int, error) {
	if input == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(input)
	if err != nil {
		return 0, fmt.Errorf("invalid %s (use a whole year)", name)
	}
	return v, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := max(1, lipgloss.Height(activeNavStyle.Render("X")))
	headerHeight = tabsHeight + 1
	footerHeight = 1 + len(m.messageLines())
	bodyHeight = max(1, m.height-headerHeight-footerHeight)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, vpHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = vpHeight
	}
	m.dataTable.SetWidth(m.width)
	m.dataTable.SetHeight(max(1, vpHeight-1))
	for i := range m.filterInputs {
		promptWidth := lipgloss.Width(m.filterInputs[i].Prompt)
		m.filterInputs[i].Width = max(10, m.width-promptWidth-2)
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	m.activeTab = (m.activeTab + delta + count) % count
	if m.activeTab == tabData {
		m.dataTable.Focus()
	} else {
		m.dataTable.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	filters := padLines(m.renderFilterSummary(), m.width)
	return tabs + "\n" + filters
}

func (m *Model) renderFilterSummary() string {
	depts := "none"
	if m.selectsAllDepartments() {
		depts = "all"
	} else if len(m.spec.Departments) > 0 {
		depts = strings.Join(m.spec.SelectedDepartments(), ",")
	}
	parts := []string{"Filters: dept=" + depts}
	if r := m.spec.Salary; r != nil {
		parts = append(parts, fmt.Sprintf("salary=%s..%s", formatFloat(r.Min), formatFloat(r.Max)))
	}
	if r := m.spec.Performance; r != nil {
		parts = append(parts, fmt.Sprintf("perf=%s..%s", formatFloat(r.Min), formatFloat(r.Max)))
	}
	if r := m.spec.YearJoined; r != nil {
		parts = append(parts, fmt.Sprintf("year=%d..%d", r.Min, r.Max))
	}
	if m.spec.NameQuery != "" {
		parts = append(parts, fmt.Sprintf("name=%q", m.spec.NameQuery))
	}
	return headerStyle.Render(truncateLine(strings.Join(parts, "  "), m.width))
}

func (m *Model) selectsAllDepartments() bool {
	b, ok := m.session.Bounds()
	if !ok || len(b.Departments) == 0 {
		return false
	}
	for _, dept := range b.Departments {
		if _, ok := m.spec.Departments[dept]; !ok {
			return false
		}
	}
	return true
}

func (m *Model) renderHelp() string {
	return headerStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Filters: /  Reset: c  Export: e  Reload: r  Quit: q")
}

func (m *Model) renderFilterHelp() string {
	return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel  quit: ctrl+c")
}

func (m *Model) messageLines() []string {
	if m.filterMode {
		return nil
	}
	var lines []string
	if m.errMsg != "" {
		lines = append(lines, errorStyle.Render(truncateLine(m.errMsg, m.width)))
	}
	if m.view.Warning != "" {
		lines = append(lines, warnStyle.Render(truncateLine(m.view.Warning, m.width)))
	}
	if m.statusMsg != "" {
		lines = append(lines, headerStyle.Render(truncateLine(m.statusMsg, m.width)))
	}
	return lines
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return m.renderFilterHelp()
	}
	return strings.Join(append([]string{m.renderHelp()}, m.messageLines()...), "\n")
}

func (m *Model) renderFilterForm() string {
	lines := []string{"Filters (enter to apply, esc to cancel)"}
	for _, input := range m.filterInputs {
		lines = append(lines, input.View())
	}
	if m.filterError != "" {
		lines = append(lines, errorStyle.Render(m.filterError))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderBody(height int) string {
	if m.filterMode {
		return fitLines(m.renderFilterForm(), m.width, height)
	}
	if m.activeTab == tabData {
		if m.view.Table.Len() == 0 {
			return fitLines(emptyNotice, m.width, height)
		}
		return fitLines(tableMutedStyle.Render(m.dataTable.View()), m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

const emptyNotice = "No employees match the current filters."

func (m *Model) refresh() {
	view, err := m.session.Evaluate(m.spec)
	if err != nil {
		m.errMsg = err.Error()
		m.view = dashboard.View{}
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load data.")
		}
		return
	}
	m.errMsg = ""
	m.view = view
	m.spec = view.Spec
	_, bodyHeight, _ := m.layoutHeights()
	m.dataTable = buildDataTable(view.Table, m.width, bodyHeight)
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 || m.view.Table.Columns == nil {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	currency := m.session.Currency()
	m.viewports[tabOverview].SetContent(renderOverview(m.view, currency, width))
	m.viewports[tabCharts].SetContent(renderCharts(m.view.Table, currency, width))
}

func renderOverview(view dashboard.View, currency string, width int) string {
	result := view.Result
	if result.Count == 0 {
		return strings.Join([]string{metricCard("Total Employees", "0"), emptyNotice}, "\n")
	}
	cards := []string{
		metricCard("Total Employees", humanize.Comma(int64(result.Count))),
		metricCard("Average Salary", stats.FormatCurrency(result.MeanSalary, currency)),
		metricCard("Average Performance", fmt.Sprintf("%.2f", result.MeanPerformance)),
	}
	var sections []string
	if width < 80 {
		sections = append(sections, strings.Join(cards, "\n"))
	} else {
		sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	if len(view.Insights) > 0 {
		lines := []string{sectionStyle.Render("Insights")}
		for _, ins := range view.Insights {
			for i, line := range wrapText(ins.Text, max(10, width-2)) {
				prefix := "  "
				if i == 0 {
					prefix = "- "
				}
				lines = append(lines, prefix+line)
			}
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}
	breakdown := append([]string{sectionStyle.Render("By Department")}, stats.BreakdownLines(result, currency)...)
	sections = append(sections, strings.Join(breakdown, "\n"))
	return strings.Join(sections, "\n\n")
}

func renderCharts(tbl model.Table, currency string, width int) string {
	if tbl.Len() == 0 {
		return emptyNotice
	}
	var buf bytes.Buffer
	if err := stats.RenderBars(&buf, "Employees by Department", stats.CountByDepartment(tbl), stats.CountFormat, width, true); err != nil {
		return fmt.Sprintf("Failed to render charts: %v", err)
	}
	if err := stats.RenderBars(&buf, "Performance Score Distribution", stats.PerformanceDistribution(tbl), stats.CountFormat, width, true); err != nil {
		return fmt.Sprintf("Failed to render charts: %v", err)
	}
	spread := stats.SalarySpread(tbl)
	salaryFormat := func(v float64) string { return stats.FormatCurrency(v, currency) }
	if err := stats.RenderBars(&buf, "Average Salary by Department", stats.SalaryBuckets(spread), salaryFormat, width, true); err != nil {
		return fmt.Sprintf("Failed to render charts: %v", err)
	}
	if err := stats.RenderSpread(&buf, spread, currency); err != nil {
		return fmt.Sprintf("Failed to render charts: %v", err)
	}
	if err := stats.RenderPivot(&buf, stats.PerformancePivot(tbl)); err != nil {
		return fmt.Sprintf("Failed to render charts: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func buildDataTable(tbl model.Table, width, height int) table.Model {
	cols, rows := buildDataTableData(tbl)
	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithHeight(max(1, height-1)),
	)
	if width > 0 {
		t.SetWidth(width)
	}
	t.SetStyles(dataTableStyles())
	return t
}

func buildDataTableData(tbl model.Table) ([]table.Column, []table.Row) {
	header := tbl.Header()
	widths := make([]int, len(header))
	for i, name := range header {
		widths[i] = runewidth.StringWidth(name)
	}
	rows := make([]table.Row, tbl.Len())
	for i := range rows {
		cells := stats.FormatRow(tbl.Row(i))
		for c, cell := range cells {
			widths[c] = max(widths[c], runewidth.StringWidth(cell))
		}
		rows[i] = table.Row(cells)
	}
	cols := make([]table.Column, len(header))
	for i, name := range header {
		cols[i] = table.Column{Title: name, Width: min(widths[i], maxDataColumnWidth)}
	}
	return cols, rows
}

func dataTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.setInputsFromSpec()
	return m, m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		if err := m.applyFilter(); err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.filterMode = false
		m.filterError = ""
		m.statusMsg = ""
		m.refresh()
		m.updateLayout()
		return m, nil
	case tea.KeyTab, tea.KeyDown:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab, tea.KeyUp:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	if count == 0 {
		return nil
	}
	m.filterIndex = (idx + count) % count
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) applyFilter() error {
	b, ok := m.session.Bounds()
	if !ok {
		return fmt.Errorf("no data loaded")
	}
	values := make([]string, len(m.filterInputs))
	for i, input := range m.filterInputs {
		values[i] = input.Value()
	}
	spec, err := parseSpec(values, b)
	if err != nil {
		return err
	}
	m.spec = spec
	return nil
}

func (m *Model) exportView() {
	data, err := m.session.Export(m.spec)
	if err != nil {
		m.statusMsg = ""
		m.errMsg = fmt.Sprintf("Export failed: %v", err)
		return
	}
	if err := export.WriteFile(m.exportPath, data); err != nil {
		m.statusMsg = ""
		m.errMsg = fmt.Sprintf("Export failed: %v", err)
		return
	}
	m.errMsg = ""
	m.statusMsg = fmt.Sprintf("Exported %d rows to %s (%s)", m.view.Table.Len(), m.exportPath, humanize.Bytes(uint64(len(data))))
}

func (m *Model) reload() {
	if err := m.session.Reload(context.Background()); err != nil {
		m.statusMsg = ""
		if _, ok := m.session.Table(); ok {
			m.errMsg = fmt.Sprintf("Reload failed, showing previous data: %v", err)
			return
		}
		m.errMsg = fmt.Sprintf("Reload failed: %v", err)
		return
	}
	m.resetSpec()
	m.statusMsg = "Reloaded " + m.session.Source().String()
	m.refresh()
	m.updateLayout()
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "...")
}
