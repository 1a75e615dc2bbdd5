package ui

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/skalibog/mfra/internal/analysis/composite"
	"github.com/skalibog/mfra/internal/config"
	"github.com/skalibog/mfra/pkg/logger"
	"github.com/skalibog/mfra/pkg/models"
)

// Стили UI
var (
	// Основные цвета
	primaryColor   = lipgloss.Color("#0077cc")
	secondaryColor = lipgloss.Color("#333333")
	errorColor     = lipgloss.Color("#cc3300")
	successColor   = lipgloss.Color("#33cc33")
	warningColor   = lipgloss.Color("#cccc00")
	// Главный контейнер
	appStyle = lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor)
	// Заголовок
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(primaryColor).
			Padding(0, 1).
			Align(lipgloss.Center)
	// Секция риска
	riskHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(secondaryColor).
			Padding(0, 1)
	riskSectionStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(secondaryColor).
				Padding(0, 1)
	// Секция логов
	logsHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(secondaryColor).
			Padding(0, 1)
	logsSectionStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(secondaryColor).
				Padding(0, 1)
	// Футер
	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#999999")).
			Padding(0, 1)
)

// historyDepth количество точек истории риска выбранного актива
const historyDepth = 14

// TermUI представляет терминальный интерфейс
type TermUI struct {
	ctx           context.Context
	analyzer      *composite.Analyzer
	risks         map[string]*models.MultiFactorRiskPoint
	risksMutex    sync.RWMutex
	history       []models.MultiFactorRiskPoint
	historySymbol string
	historyMutex  sync.RWMutex
	logs          []string
	logsMutex     sync.RWMutex
	config        config.UIConfig
	program       *tea.Program
	selectedIndex int
	width         int
	height        int
	logFile       string // Путь к файлу логов
}

// Сообщения для обновления UI
type refreshMsg struct{}

// historyMsg история риска выбранного актива загружена
type historyMsg struct {
	symbol string
	points []models.MultiFactorRiskPoint
}

// bubbleModel - модель для bubbletea
type bubbleModel struct {
	ui *TermUI
}

func NewTermUI(cfg config.UIConfig, analyzer *composite.Analyzer, ctx context.Context) (*TermUI, error) {
	ui := &TermUI{
		ctx:           ctx,
		analyzer:      analyzer,
		risks:         make(map[string]*models.MultiFactorRiskPoint),
		logs:          []string{"MFRA запущен. Ожидание данных..."},
		config:        cfg,
		selectedIndex: 0,
		width:         120,
		height:        40,
		logFile:       logger.JSONLogFile(),
	}

	// Загружаем логи из файла при запуске
	if err := ui.loadLogsFromFile(); err != nil {
		ui.logs = append(ui.logs, fmt.Sprintf("Ошибка загрузки логов: %v", err))
	}

	// Запускаем таймер для обновления логов
	go func() {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := ui.loadLogsFromFile(); err != nil {
					logger.Warn("Ошибка загрузки логов", zap.Error(err))
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return ui, nil
}

func (ui *TermUI) Start() {
	model := bubbleModel{ui: ui}
	ui.program = tea.NewProgram(model, tea.WithAltScreen())

	// Запускаем UI
	if _, err := ui.program.Run(); err != nil {
		fmt.Printf("Ошибка запуска UI: %v\n", err)
	}
}

// UpdateRisks обновляет отображаемые точки риска
func (ui *TermUI) UpdateRisks(risks map[string]*models.MultiFactorRiskPoint) {
	ui.risksMutex.Lock()
	defer ui.risksMutex.Unlock()

	ui.risks = risks

	if ui.program != nil {
		ui.program.Send(refreshMsg{})
	}
}

// loadLogsFromFile читает последние записи JSON-лога
func (ui *TermUI) loadLogsFromFile() error {
	file, err := os.Open(ui.logFile)
	if err != nil {
		if os.IsNotExist(err) {
			// Файл не существует, это не ошибка
			return nil
		}
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var logs []string

	// Регулярное выражение для удаления ANSI-цветов
	ansiRegex := regexp.MustCompile(`\x1b\[[0-9;]*m`)

	// Читаем строки из файла
	for scanner.Scan() {
		line := scanner.Text()

		// Пытаемся распарсить JSON
		var zapLog map[string]interface{}
		if err := json.Unmarshal([]byte(line), &zapLog); err == nil {
			// Получаем основные поля
			level, _ := zapLog["level"].(string)
			ts, _ := zapLog["ts"].(string)
			msg, _ := zapLog["msg"].(string)

			// Удаляем ANSI-цвета из уровня логирования
			level = ansiRegex.ReplaceAllString(level, "")

			// Форматируем сообщение
			timestamp := ""
			if t, err := time.Parse("02.01.2006 - 15:04:05.999999999Z07:00", ts); err == nil {
				timestamp = t.Format("15:04:05")
			}

			formattedMsg := fmt.Sprintf("[%s] [%s] %s", timestamp, level, msg)

			// Добавляем дополнительные поля, если они есть
			for k, v := range zapLog {
				if k != "level" && k != "ts" && k != "msg" && k != "caller" {
					formattedMsg += fmt.Sprintf(" (%s: %v)", k, v)
				}
			}

			logs = append(logs, formattedMsg)
		} else {
			// Не удалось распарсить JSON, добавляем как есть
			logs = append(logs, line)
		}

		// Ограничиваем количество логов
		if len(logs) > 50 {
			logs = logs[1:]
		}
	}

	if err := scanner.Err(); err != nil {
		return err
	}

	ui.logsMutex.Lock()
	defer ui.logsMutex.Unlock()

	if len(logs) > 0 {
		ui.logs = logs
		if len(ui.logs) > 50 {
			ui.logs = ui.logs[len(ui.logs)-50:]
		}
	}

	return nil
}

func renderLogsSection(logs []string) string {
	header := logsHeaderStyle.Render("ЛОГИ")
	content := strings.Builder{}

	maxLogsToShow := 50
	if logsSectionStyle.GetHeight() > 8 {
		maxLogsToShow = logsSectionStyle.GetHeight() - 2
	}

	start := 0
	if len(logs) > maxLogsToShow {
		start = len(logs) - maxLogsToShow
	}

	for i := start; i < len(logs); i++ {
		log := logs[i]

		// Выделение по уровню логирования
		if strings.Contains(log, "[ERROR]") {
			log = lipgloss.NewStyle().Foreground(errorColor).Render(log)
		} else if strings.Contains(log, "[INFO]") {
			log = lipgloss.NewStyle().Foreground(successColor).Render(log)
		} else if strings.Contains(log, "[WARN]") {
			log = lipgloss.NewStyle().Foreground(warningColor).Render(log)
		} else if strings.Contains(log, "[DEBUG]") {
			log = lipgloss.NewStyle().Foreground(lipgloss.Color("#9999ff")).Render(log)
		}

		content.WriteString("  " + log + "\n")
	}

	return logsSectionStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			content.String(),
		),
	)
}

// Методы для bubbletea
func (m bubbleModel) Init() tea.Cmd {
	return nil
}

func (m bubbleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up":
			if m.ui.selectedIndex > 0 {
				m.ui.selectedIndex--
				return m, m.ui.loadHistoryCmd()
			}
		case "down":
			symbols := symbolsFromRisks(m.ui.risks)
			if m.ui.selectedIndex < len(symbols)-1 {
				m.ui.selectedIndex++
				return m, m.ui.loadHistoryCmd()
			}
		}

	case tea.WindowSizeMsg:
		m.ui.width = msg.Width
		m.ui.height = msg.Height

	case refreshMsg:
		// Свежие точки риска: подтягиваем историю выбранного актива
		return m, m.ui.loadHistoryCmd()

	case historyMsg:
		m.ui.historyMutex.Lock()
		m.ui.historySymbol = msg.symbol
		m.ui.history = msg.points
		m.ui.historyMutex.Unlock()
	}

	return m, nil
}

// loadHistoryCmd загружает историю риска выбранного актива из хранилища
func (ui *TermUI) loadHistoryCmd() tea.Cmd {
	ui.risksMutex.RLock()
	symbols := symbolsFromRisks(ui.risks)
	ui.risksMutex.RUnlock()

	index := ui.selectedIndex
	if index >= len(symbols) {
		return nil
	}
	symbol := symbols[index]

	return func() tea.Msg {
		points, err := ui.analyzer.GetRiskHistory(ui.ctx, symbol, historyDepth)
		if err != nil {
			logger.Warn("Ошибка загрузки истории риска",
				zap.String("symbol", symbol), zap.Error(err))
			return historyMsg{symbol: symbol}
		}
		return historyMsg{symbol: symbol, points: points}
	}
}

func (m bubbleModel) View() string {
	m.ui.risksMutex.RLock()
	m.ui.historyMutex.RLock()
	m.ui.logsMutex.RLock()
	defer m.ui.risksMutex.RUnlock()
	defer m.ui.historyMutex.RUnlock()
	defer m.ui.logsMutex.RUnlock()

	title := titleStyle.Render("MFRA - Multi-Factor Risk Analyzer")
	risks := renderRiskSection(m.ui.risks, m.ui.selectedIndex)
	history := renderHistorySection(m.ui.historySymbol, m.ui.history)
	logs := renderLogsSection(m.ui.logs)
	footer := footerStyle.Render("Клавиши: ↑/↓ - навигация, Q - выход")

	return appStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"\n",
			risks,
			"\n",
			history,
			"\n",
			logs,
			"\n",
			footer,
		),
	)
}

// renderHistorySection отображает последние точки риска выбранного актива
func renderHistorySection(symbol string, points []models.MultiFactorRiskPoint) string {
	header := riskHeaderStyle.Render("ИСТОРИЯ " + symbol)
	content := strings.Builder{}

	if len(points) == 0 {
		content.WriteString("  Нет сохраненных точек риска\n")
	} else {
		for _, p := range points {
			line := fmt.Sprintf("  %s  %.3f  %s  Отклонение: %+.3f",
				p.Date.Format("2006-01-02"), p.RiskLevel, formatCategoryText(p.Category), p.Deviation)
			content.WriteString(line + "\n")
		}
	}

	return riskSectionStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			content.String(),
		),
	)
}

// renderRiskSection отображает таблицу композитного риска
func renderRiskSection(risks map[string]*models.MultiFactorRiskPoint, selectedIndex int) string {
	header := riskHeaderStyle.Render("РИСК")
	content := strings.Builder{}

	symbols := symbolsFromRisks(risks)

	if len(symbols) == 0 {
		content.WriteString("  Ожидание данных...\n")
	} else {
		for i, symbol := range symbols {
			point := risks[symbol]

			categoryText := formatCategoryText(point.Category)

			line := fmt.Sprintf("  %s: %s (%.3f) Цена: %.2f Модель: %.2f Отклонение: %+.3f",
				symbol, categoryText, point.RiskLevel, point.Price, point.FairValue, point.Deviation)

			// Выделяем выбранную строку
			if i == selectedIndex {
				line = "> " + line[2:]
				line = lipgloss.NewStyle().Background(lipgloss.Color("#222222")).Render(line)
			}

			content.WriteString(line + "\n")
		}
	}

	return riskSectionStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			content.String(),
		),
	)
}

// formatCategoryText раскрашивает категорию риска
func formatCategoryText(category models.RiskCategory) string {
	var style lipgloss.Style

	switch category {
	case models.RiskVeryLow:
		style = lipgloss.NewStyle().Foreground(successColor).Bold(true)
	case models.RiskLow:
		style = lipgloss.NewStyle().Foreground(successColor)
	case models.RiskNeutral:
		style = lipgloss.NewStyle().Foreground(warningColor)
	case models.RiskElevated:
		style = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff9933"))
	case models.RiskHigh:
		style = lipgloss.NewStyle().Foreground(errorColor)
	case models.RiskExtreme:
		style = lipgloss.NewStyle().Foreground(errorColor).Bold(true)
	default:
		style = lipgloss.NewStyle().Foreground(warningColor)
	}

	return style.Render(category.Label())
}

// symbolsFromRisks возвращает символы в стабильном порядке
func symbolsFromRisks(risks map[string]*models.MultiFactorRiskPoint) []string {
	symbols := make([]string, 0, len(risks))
	for symbol := range risks {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}
