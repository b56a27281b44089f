// Консольный клиент сервиса озвучки: регистрация, вход, список голосов,
// генерация речи и история. Токен сессии кэшируется в домашнем каталоге.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/term"
)

const tokenFileName = ".novavoice_token"

type client struct {
	baseURL string
	http    *http.Client
}

func main() {
	baseURL := flag.String("addr", "http://127.0.0.1:8008", "адрес сервера")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	c := &client{
		baseURL: strings.TrimRight(*baseURL, "/") + "/api/v1",
		http:    &http.Client{Timeout: 120 * time.Second},
	}

	var err error
	switch args[0] {
	case "register":
		err = c.register()
	case "login":
		err = c.login()
	case "logout":
		err = c.logout()
	case "me":
		err = c.me()
	case "voices":
		err = c.voices()
	case "generate":
		err = c.generate(args[1:])
	case "clone":
		err = c.clone(args[1:])
	case "history":
		err = c.history()
	case "upgrade":
		err = c.upgrade(args[1:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println(`Usage: novavoice-client [-addr URL] <command>

Commands:
  register                     зарегистрировать нового пользователя
  login                        войти и сохранить токен сессии
  logout                       отозвать сессию
  me                           показать профиль и остаток генераций
  voices                       список доступных голосов
  generate -text T -voice N    сгенерировать речь и сохранить WAV
  clone -name N -sample FILE   клонировать голос по образцу
  history                      список генераций
  upgrade -tier T -token TOK   сменить тариф`)
}

func promptLine(prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func promptPassword() (string, error) {
	fmt.Print("Enter password: ")
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

func tokenPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, tokenFileName), nil
}

func saveToken(token string) error {
	path, err := tokenPath()
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(token), 0o600)
}

func loadToken() (string, error) {
	path, err := tokenPath()
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("not logged in, run login first: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

type apiResponse struct {
	Status string          `json:"status"`
	Error  string          `json:"error,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

func (c *client) do(method, path string, body any, authorized bool) (*apiResponse, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authorized {
		token, err := loadToken()
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var api apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&api); err != nil {
		return nil, fmt.Errorf("unexpected response (%s): %w", resp.Status, err)
	}
	if api.Status != "OK" {
		return nil, fmt.Errorf("%s (%s)", api.Error, resp.Status)
	}
	return &api, nil
}

func (c *client) register() error {
	username, err := promptLine("Enter username: ")
	if err != nil {
		return err
	}
	email, err := promptLine("Enter email: ")
	if err != nil {
		return err
	}
	password, err := promptPassword()
	if err != nil {
		return err
	}

	_, err = c.do(http.MethodPost, "/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, false)
	if err != nil {
		return err
	}
	fmt.Println("registered, now run: novavoice-client login")
	return nil
}

func (c *client) login() error {
	username, err := promptLine("Enter username: ")
	if err != nil {
		return err
	}
	password, err := promptPassword()
	if err != nil {
		return err
	}

	resp, err := c.do(http.MethodPost, "/login", map[string]string{
		"username": username,
		"password": password,
	}, false)
	if err != nil {
		return err
	}

	var data struct {
		Token           string `json:"token"`
		Tier            string `json:"tier"`
		GenerationsLeft int    `json:"generations_left"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return err
	}
	if err := saveToken(data.Token); err != nil {
		return err
	}
	fmt.Printf("logged in, tier %s, %d generations left today\n", data.Tier, data.GenerationsLeft)
	return nil
}

func (c *client) logout() error {
	if _, err := c.do(http.MethodPost, "/logout", nil, true); err != nil {
		return err
	}
	path, err := tokenPath()
	if err == nil {
		_ = os.Remove(path)
	}
	fmt.Println("logged out")
	return nil
}

func (c *client) me() error {
	resp, err := c.do(http.MethodGet, "/users/me", nil, true)
	if err != nil {
		return err
	}
	printJSON(resp.Data)
	return nil
}

func (c *client) voices() error {
	resp, err := c.do(http.MethodGet, "/voices", nil, true)
	if err != nil {
		return err
	}
	var data struct {
		Voices []struct {
			ID       int    `json:"id"`
			Name     string `json:"name"`
			Kind     string `json:"kind"`
			Language string `json:"language"`
		} `json:"voices"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return err
	}
	for _, v := range data.Voices {
		fmt.Printf("%4d  %-20s %-8s %s\n", v.ID, v.Name, v.Kind, v.Language)
	}
	return nil
}

func (c *client) generate(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	text := fs.String("text", "", "текст для озвучки")
	voiceID := fs.Int("voice", 0, "идентификатор голоса")
	speed := fs.Float64("speed", 1.0, "скорость речи (0.5-2.0)")
	pitch := fs.Float64("pitch", 1.0, "высота тона (0.5-2.0)")
	emotion := fs.String("emotion", "neutral", "эмоция: neutral, happy, sad")
	out := fs.String("out", "output.wav", "файл для сохранения аудио")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *text == "" || *voiceID == 0 {
		return fmt.Errorf("-text and -voice are required")
	}

	resp, err := c.do(http.MethodPost, "/tts/generate", map[string]any{
		"text":     *text,
		"voice_id": *voiceID,
		"speed":    *speed,
		"pitch":    *pitch,
		"emotion":  *emotion,
	}, true)
	if err != nil {
		return err
	}

	var data struct {
		AudioURL string `json:"audio_url"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return err
	}
	if err := c.download(data.AudioURL, *out); err != nil {
		return err
	}
	fmt.Println("saved to", *out)
	return nil
}

func (c *client) download(audioURL, out string) error {
	token, err := loadToken()
	if err != nil {
		return err
	}
	// audio_url приходит с префиксом /api/v1
	url := strings.TrimSuffix(c.baseURL, "/api/v1") + audioURL
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed: %s", resp.Status)
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, resp.Body)
	return err
}

func (c *client) clone(args []string) error {
	fs := flag.NewFlagSet("clone", flag.ExitOnError)
	name := fs.String("name", "", "имя нового голоса")
	language := fs.String("language", "", "язык голоса")
	samplePath := fs.String("sample", "", "путь к образцу аудио")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" || *samplePath == "" {
		return fmt.Errorf("-name and -sample are required")
	}

	sample, err := os.ReadFile(*samplePath)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("name", *name)
	if *language != "" {
		_ = mw.WriteField("language", *language)
	}
	fw, err := mw.CreateFormFile("sample", filepath.Base(*samplePath))
	if err != nil {
		return err
	}
	if _, err := fw.Write(sample); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	token, err := loadToken()
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/voice/clone", &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var api apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&api); err != nil {
		return err
	}
	if api.Status != "OK" {
		return fmt.Errorf("%s (%s)", api.Error, resp.Status)
	}
	printJSON(api.Data)
	return nil
}

func (c *client) history() error {
	resp, err := c.do(http.MethodGet, "/history", nil, true)
	if err != nil {
		return err
	}
	var data struct {
		Generations []struct {
			ID        int       `json:"id"`
			VoiceName string    `json:"voice_name"`
			Text      string    `json:"text"`
			CreatedAt time.Time `json:"created_at"`
		} `json:"generations"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return err
	}
	for _, g := range data.Generations {
		fmt.Printf("%4d  %s  %-15s %s\n", g.ID, g.CreatedAt.Format("2006-01-02 15:04"), g.VoiceName, truncateText(g.Text, 40))
	}
	return nil
}

// truncateText обрезает строку до max рун, не разрезая многобайтовые символы.
func truncateText(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

func (c *client) upgrade(args []string) error {
	fs := flag.NewFlagSet("upgrade", flag.ExitOnError)
	tier := fs.String("tier", "", "целевой тариф: Basic, Premium, Ultimate")
	token := fs.String("token", "", "симулированный платёжный токен (tok_...)")
	card := fs.String("card", "4242424242424242", "номер карты для маскированной квитанции")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *tier == "" || *token == "" {
		return fmt.Errorf("-tier and -token are required")
	}

	resp, err := c.do(http.MethodPost, "/subscription/upgrade", map[string]string{
		"tier":          *tier,
		"payment_token": *token,
		"card_number":   *card,
	}, true)
	if err != nil {
		return err
	}
	printJSON(resp.Data)
	return nil
}

func printJSON(raw json.RawMessage) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		fmt.Println(string(raw))
		return
	}
	fmt.Println(buf.String())
}
