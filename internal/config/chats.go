package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// TrackedChat is one allow-listed conversation. Messages are only admitted
// from the configured thread of the configured chat.
type TrackedChat struct {
	ChatID   int64  `json:"chat_id"`
	Title    string `json:"title"`
	ThreadID int    `json:"thread_id"`
}

// DefaultChats returns the deployed allow-list.
//
// The test-bot chat's thread id diverged between deployments (0 and 3 were
// both seen in the wild); 3 is the value confirmed by the operator. Override
// via KASSA_CHATS_FILE if the other value is needed.
func DefaultChats() map[int64]TrackedChat {
	chats := []TrackedChat{
		{ChatID: -1002079167705, Title: "A. Mousse Art Bakery - Белинского, 23", ThreadID: 48},
		{ChatID: -1002936236597, Title: "B. Millionroz.by - Тимирязева, 67", ThreadID: 3},
		{ChatID: -1002423500927, Title: "E. Flovi.Studio - Тимирязева, 65Б", ThreadID: 2},
		{ChatID: -1003117964688, Title: "F. Flowers Titan - Мележа, 1", ThreadID: 5},
		{ChatID: -1002864795738, Title: "G. Цветы Мира - Академическая, 6", ThreadID: 3},
		{ChatID: -1002535060344, Title: "H. Kudesnica.by - Старовиленский тракт, 10", ThreadID: 5},
		{ChatID: -1002477650634, Title: "I. Cvetok.by - Восточная, 41", ThreadID: 3},
		{ChatID: -1003204457764, Title: "J. Jungle.by - Неманская, 2", ThreadID: 4},
		{ChatID: -1002660511483, Title: "K. Pastel Flowers - Сурганова, 31", ThreadID: 3},
		{ChatID: -1002360529455, Title: "333. ТЕСТ БОТОВ - 1-й Нагатинский пр-д", ThreadID: 3},
		{ChatID: -1002538985387, Title: "L. Lamour.by - Кропоткина, 84", ThreadID: 3},
	}
	m := make(map[int64]TrackedChat, len(chats))
	for _, c := range chats {
		m[c.ChatID] = c
	}
	return m
}

// LoadChats returns the allow-list from the given JSON file, or the built-in
// defaults when path is empty. The file holds an array of tracked chats.
func LoadChats(path string) (map[int64]TrackedChat, error) {
	if path == "" {
		return DefaultChats(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read chats file: %w", err)
	}
	var chats []TrackedChat
	if err := json.Unmarshal(data, &chats); err != nil {
		return nil, fmt.Errorf("parse chats file %s: %w", path, err)
	}
	if len(chats) == 0 {
		return nil, fmt.Errorf("chats file %s defines no chats", path)
	}
	m := make(map[int64]TrackedChat, len(chats))
	for _, c := range chats {
		if c.ChatID == 0 {
			return nil, fmt.Errorf("chats file %s: chat with zero id (title %q)", path, c.Title)
		}
		m[c.ChatID] = c
	}
	return m, nil
}

// LoadTriggers returns the trigger vocabulary (label -> BYN cents) from the
// given JSON file, or nil when path is empty so the caller falls back to the
// built-in table.
func LoadTriggers(path string) (map[string]int64, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read triggers file: %w", err)
	}
	var triggers map[string]int64
	if err := json.Unmarshal(data, &triggers); err != nil {
		return nil, fmt.Errorf("parse triggers file %s: %w", path, err)
	}
	if len(triggers) == 0 {
		return nil, fmt.Errorf("triggers file %s defines no triggers", path)
	}
	return triggers, nil
}
