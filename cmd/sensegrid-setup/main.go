package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const DEFAULT_SERVER = "http://localhost:3536"

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170")).
			Bold(true).
			PaddingLeft(2)

	normalStyle = lipgloss.NewStyle().
			PaddingLeft(4)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	onlineStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	offlineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

type step int

const (
	stepEnteringUsername step = iota
	stepEnteringPassword
	stepLoggingIn
	stepMenu
	stepListingDevices
	stepShowingDevices
	stepEnteringDeviceID
	stepEnteringDeviceName
	stepProvisioning
	stepEnteringCleanupDays
	stepCleaning
	stepComplete
)

var menuItems = []string{
	"List devices",
	"Provision a device",
	"Run retention cleanup",
	"Quit",
}

type deviceRow struct {
	DeviceID string `json:"device_id"`
	Name     string `json:"name"`
	Status   string `json:"status"`
}

type model struct {
	step         step
	serverURL    string
	cursor       int
	username     string
	password     string
	userID       string
	devices      []deviceRow
	newDeviceID  string
	newName      string
	currentInput string
	message      string
	quitting     bool
}

type loginSuccessMsg struct{ userID string }
type devicesMsg []deviceRow
type provisionedMsg struct{ deviceID string }
type cleanupDoneMsg struct {
	deleted int64
	cutoff  string
}
type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

func initialModel() model {
	serverURL := os.Getenv("SENSEGRID_SERVER")
	if serverURL == "" {
		serverURL = DEFAULT_SERVER
	}
	return model{
		step:      stepEnteringUsername,
		serverURL: serverURL,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func apiClient() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}

func loginUser(serverURL, username, password string) tea.Cmd {
	return func() tea.Msg {
		payload := map[string]string{
			"username": username,
			"password": password,
		}
		jsonData, _ := json.Marshal(payload)

		req, _ := http.NewRequest("POST", serverURL+"/api/v1/auth/login", bytes.NewBuffer(jsonData))
		req.Header.Set("Content-Type", "application/json")

		resp, err := apiClient().Do(req)
		if err != nil {
			return errMsg{fmt.Errorf("cannot reach server at %s", serverURL)}
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return errMsg{fmt.Errorf("invalid username or password")}
		}

		var result map[string]interface{}
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return errMsg{fmt.Errorf("unexpected response from server")}
		}
		userID, _ := result["user_id"].(string)
		if userID == "" {
			return errMsg{fmt.Errorf("unexpected response from server")}
		}

		return loginSuccessMsg{userID: userID}
	}
}

func fetchDevices(serverURL string) tea.Cmd {
	return func() tea.Msg {
		resp, err := apiClient().Get(serverURL + "/api/v1/devices")
		if err != nil {
			return errMsg{fmt.Errorf("failed to list devices: %w", err)}
		}
		defer resp.Body.Close()

		var result struct {
			Data []deviceRow `json:"data"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return errMsg{fmt.Errorf("failed to decode device list: %w", err)}
		}
		return devicesMsg(result.Data)
	}
}

func provisionDevice(serverURL, deviceID, name string) tea.Cmd {
	return func() tea.Msg {
		payload := map[string]string{
			"device_id":   deviceID,
			"name":        name,
			"device_type": "sensor_node",
		}
		jsonData, _ := json.Marshal(payload)

		resp, err := apiClient().Post(serverURL+"/api/v1/devices", "application/json", bytes.NewBuffer(jsonData))
		if err != nil {
			return errMsg{fmt.Errorf("failed to provision device: %w", err)}
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusCreated {
			body, _ := io.ReadAll(resp.Body)
			return errMsg{fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))}
		}
		return provisionedMsg{deviceID: deviceID}
	}
}

func runCleanup(serverURL string, days int) tea.Cmd {
	return func() tea.Msg {
		url := fmt.Sprintf("%s/api/v1/retention/cleanup?days=%d", serverURL, days)
		resp, err := apiClient().Post(url, "application/json", nil)
		if err != nil {
			return errMsg{fmt.Errorf("cleanup request failed: %w", err)}
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			return errMsg{fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))}
		}

		var result struct {
			Data struct {
				Deleted    int64  `json:"deleted"`
				CutoffDate string `json:"cutoff_date"`
			} `json:"data"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return errMsg{fmt.Errorf("failed to decode cleanup result: %w", err)}
		}
		return cleanupDoneMsg{deleted: result.Data.Deleted, cutoff: result.Data.CutoffDate}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "q":
			if m.step == stepMenu || m.step == stepShowingDevices || m.step == stepComplete {
				m.quitting = true
				return m, tea.Quit
			}
			if m.inputStep() {
				m.currentInput += "q"
			}

		case "up", "k":
			if m.step == stepMenu && m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if m.step == stepMenu && m.cursor < len(menuItems)-1 {
				m.cursor++
			}

		case "backspace":
			if len(m.currentInput) > 0 {
				m.currentInput = m.currentInput[:len(m.currentInput)-1]
			}

		case "enter":
			return m.handleEnter()

		default:
			if m.inputStep() {
				m.currentInput += msg.String()
			}
		}

	case loginSuccessMsg:
		m.userID = msg.userID
		m.step = stepMenu
		m.cursor = 0
		m.message = successStyle.Render("Logged in as " + m.username)

	case devicesMsg:
		m.devices = []deviceRow(msg)
		m.step = stepShowingDevices

	case provisionedMsg:
		m.step = stepMenu
		m.message = successStyle.Render("Device " + msg.deviceID + " provisioned")

	case cleanupDoneMsg:
		m.step = stepMenu
		m.message = successStyle.Render(fmt.Sprintf("Deleted %d readings older than %s", msg.deleted, msg.cutoff))

	case errMsg:
		m.message = errorStyle.Render(msg.err.Error())
		if m.step == stepLoggingIn {
			m.step = stepEnteringUsername
		} else {
			m.step = stepMenu
		}
	}

	return m, nil
}

func (m model) inputStep() bool {
	switch m.step {
	case stepEnteringUsername, stepEnteringPassword, stepEnteringDeviceID, stepEnteringDeviceName, stepEnteringCleanupDays:
		return true
	}
	return false
}

func (m model) handleEnter() (tea.Model, tea.Cmd) {
	switch m.step {
	case stepEnteringUsername:
		if m.currentInput != "" {
			m.username = m.currentInput
			m.currentInput = ""
			m.step = stepEnteringPassword
		}

	case stepEnteringPassword:
		if m.currentInput != "" {
			m.password = m.currentInput
			m.currentInput = ""
			m.step = stepLoggingIn
			m.message = "Logging in..."
			return m, loginUser(m.serverURL, m.username, m.password)
		}

	case stepMenu:
		switch m.cursor {
		case 0:
			m.step = stepListingDevices
			m.message = ""
			return m, fetchDevices(m.serverURL)
		case 1:
			m.step = stepEnteringDeviceID
			m.message = ""
		case 2:
			m.step = stepEnteringCleanupDays
			m.message = ""
		case 3:
			m.quitting = true
			return m, tea.Quit
		}

	case stepShowingDevices:
		m.step = stepMenu

	case stepEnteringDeviceID:
		if m.currentInput != "" {
			m.newDeviceID = m.currentInput
			m.currentInput = ""
			m.step = stepEnteringDeviceName
		}

	case stepEnteringDeviceName:
		if m.currentInput != "" {
			m.newName = m.currentInput
			m.currentInput = ""
			m.step = stepProvisioning
			m.message = "Provisioning..."
			return m, provisionDevice(m.serverURL, m.newDeviceID, m.newName)
		}

	case stepEnteringCleanupDays:
		days, err := strconv.Atoi(m.currentInput)
		if err != nil || days < 1 || days > 365 {
			m.message = errorStyle.Render("days must be between 1 and 365")
			m.currentInput = ""
			return m, nil
		}
		m.currentInput = ""
		m.step = stepCleaning
		m.message = "Running cleanup..."
		return m, runCleanup(m.serverURL, days)

	case stepComplete:
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder

	s.WriteString(titleStyle.Render("SenseGrid Admin Tool\n\n"))

	switch m.step {
	case stepEnteringUsername:
		if m.message != "" {
			s.WriteString(m.message + "\n\n")
		}
		s.WriteString(promptStyle.Render("Enter your username:\n"))
		s.WriteString(inputStyle.Render("> " + m.currentInput))
		s.WriteString("\n\nPress Enter\n")

	case stepEnteringPassword:
		s.WriteString(promptStyle.Render("Enter your password:\n"))
		s.WriteString(inputStyle.Render("> " + strings.Repeat("•", len(m.currentInput))))
		s.WriteString("\n\nPress Enter\n")

	case stepLoggingIn, stepListingDevices, stepProvisioning, stepCleaning:
		s.WriteString(m.message + "\n")

	case stepMenu:
		if m.message != "" {
			s.WriteString(m.message + "\n\n")
		}
		s.WriteString(promptStyle.Render("What do you want to do?\n\n"))
		for i, item := range menuItems {
			cursor := " "
			style := normalStyle
			if m.cursor == i {
				cursor = ">"
				style = selectedStyle
			}
			s.WriteString(fmt.Sprintf("%s %s\n", cursor, style.Render(item)))
		}
		s.WriteString("\nUse ↑/↓, Enter to select, q to quit\n")

	case stepShowingDevices:
		s.WriteString(promptStyle.Render(fmt.Sprintf("Devices (%d):\n\n", len(m.devices))))
		if len(m.devices) == 0 {
			s.WriteString(normalStyle.Render("no devices registered\n"))
		}
		for _, d := range m.devices {
			statusStyle := offlineStyle
			if d.Status == "online" {
				statusStyle = onlineStyle
			}
			s.WriteString(fmt.Sprintf("  %s  %s  %s\n", d.DeviceID, d.Name, statusStyle.Render(d.Status)))
		}
		s.WriteString("\nPress Enter to go back\n")

	case stepEnteringDeviceID:
		s.WriteString(promptStyle.Render("New device id (e.g. LR1):\n"))
		s.WriteString(inputStyle.Render("> " + m.currentInput))
		s.WriteString("\n\nPress Enter\n")

	case stepEnteringDeviceName:
		s.WriteString(promptStyle.Render("Display name:\n"))
		s.WriteString(inputStyle.Render("> " + m.currentInput))
		s.WriteString("\n\nPress Enter\n")

	case stepEnteringCleanupDays:
		s.WriteString(promptStyle.Render("Delete readings older than how many days? (1-365)\n"))
		s.WriteString(inputStyle.Render("> " + m.currentInput))
		s.WriteString("\n\nPress Enter\n")

	case stepComplete:
		s.WriteString(m.message + "\n")
		s.WriteString("\nPress Enter to exit\n")
	}

	return s.String()
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
