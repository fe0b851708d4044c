// Package routeros реализует клиент REST API MikroTik RouterOS
// для управления учётными записями хотспота.
//
// Роутер — внешняя система и единственный авторитет по вопросу
// "кто сейчас в сети". Любая сетевая ошибка, таймаут или ответ 5xx
// превращаются в ErrUnavailable: вызывающий код обязан трактовать
// её как "состояние неизвестно", а не как пустую таблицу.
package routeros

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/magabrotheeeer/hotspot-billing/internal/models"
)

// ErrUnavailable — роутер недоступен или не ответил за отведённое время.
var ErrUnavailable = errors.New("router unavailable")

// ErrCredentialMissing — на роутере нет учётной записи с таким логином.
var ErrCredentialMissing = errors.New("credential missing on router")

// Client — клиент REST API RouterOS v7 (/rest/ip/hotspot/...).
type Client struct {
	apiURL     string
	username   string
	password   string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient создаёт клиент роутера. Каждый вызов ограничен timeout.
func NewClient(address, username, password string, timeout time.Duration) *Client {
	return &Client{
		apiURL:     address + "/rest",
		username:   username,
		password:   password,
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// do выполняет запрос и декодирует ответ в out (если out != nil).
// Сетевые ошибки и 5xx превращаются в ErrUnavailable.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: unexpected status %s", ErrUnavailable, resp.Status)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("router api: unexpected status %s", resp.Status)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("router api: decode response: %w", err)
		}
	}
	return nil
}

// find возвращает учётную запись хотспота по логину.
func (c *Client) find(ctx context.Context, username string) (*hotspotUser, bool, error) {
	var users []hotspotUser
	path := "/ip/hotspot/user?name=" + url.QueryEscape(username)
	if err := c.do(ctx, http.MethodGet, path, nil, &users); err != nil {
		return nil, false, err
	}
	if len(users) == 0 {
		return nil, false, nil
	}
	return &users[0], true, nil
}

// ListActive возвращает снимок таблицы активных сессий хотспота.
func (c *Client) ListActive(ctx context.Context) ([]models.LiveSession, error) {
	const op = "routeros.ListActive"
	var sessions []activeSession
	if err := c.do(ctx, http.MethodGet, "/ip/hotspot/active", nil, &sessions); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]models.LiveSession, 0, len(sessions))
	for _, s := range sessions {
		result = append(result, models.LiveSession{
			Username:   s.User,
			IPAddress:  s.Address,
			MACAddress: s.MACAddress,
			Uptime:     s.Uptime,
			LoginBy:    s.LoginBy,
		})
	}
	return result, nil
}

// ListUsernames возвращает логины всех учётных записей хотспота на роутере.
// По этому списку синхронизация решает, какие записи базы осиротели.
func (c *Client) ListUsernames(ctx context.Context) ([]string, error) {
	const op = "routeros.ListUsernames"
	var users []hotspotUser
	if err := c.do(ctx, http.MethodGet, "/ip/hotspot/user", nil, &users); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]string, 0, len(users))
	for _, u := range users {
		if u.Name != "" {
			result = append(result, u.Name)
		}
	}
	return result, nil
}

// Bind создаёт учётную запись хотспота или включает существующую.
// Повторная привязка уже привязанного логина — не ошибка.
func (c *Client) Bind(ctx context.Context, username, password, profile, uptimeLimit string) error {
	const op = "routeros.Bind"

	existing, found, err := c.find(ctx, username)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if found {
		patch := hotspotUser{Password: password, Profile: profile, Disabled: "false"}
		if err := c.do(ctx, http.MethodPatch, "/ip/hotspot/user/"+existing.ID, patch, nil); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	}

	user := hotspotUser{
		Name:        username,
		Password:    password,
		Profile:     profile,
		LimitUptime: uptimeLimit,
	}
	if err := c.do(ctx, http.MethodPut, "/ip/hotspot/user", user, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Enable включает существующую учётную запись.
// Возвращает ErrCredentialMissing, если записи на роутере нет.
func (c *Client) Enable(ctx context.Context, username string) error {
	const op = "routeros.Enable"

	existing, found, err := c.find(ctx, username)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return fmt.Errorf("%s: %w: %s", op, ErrCredentialMissing, username)
	}
	if err := c.do(ctx, http.MethodPatch, "/ip/hotspot/user/"+existing.ID,
		hotspotUser{Disabled: "false"}, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Disable выключает учётную запись. Отсутствующая запись — не ошибка:
// отключать уже отключённое безопасно.
func (c *Client) Disable(ctx context.Context, username string) error {
	const op = "routeros.Disable"

	existing, found, err := c.find(ctx, username)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return nil
	}
	if err := c.do(ctx, http.MethodPatch, "/ip/hotspot/user/"+existing.ID,
		hotspotUser{Disabled: "true"}, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Remove удаляет учётную запись с роутера. Отсутствующая запись — не ошибка.
func (c *Client) Remove(ctx context.Context, username string) error {
	const op = "routeros.Remove"

	existing, found, err := c.find(ctx, username)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return nil
	}
	if err := c.do(ctx, http.MethodDelete, "/ip/hotspot/user/"+existing.ID, nil, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
