package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ds124wfegd/lfg-bot/internal/entity"
)

// settingsService хранит идентификаторы каналов и ролей в JSON-файле.
// Файл переживает рестарт; сами тикеты — нет.
type settingsService struct {
	mu       sync.Mutex
	path     string
	settings entity.Settings
}

// NewSettingsService читает настройки из файла. Отсутствующий или битый
// файл заменяется настройками по умолчанию, которые сразу записываются.
func NewSettingsService(path string) (SettingsService, error) {
	s := &settingsService{
		path:     path,
		settings: entity.Settings{MapRoles: make(map[string]string)},
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logrus.Infof("Settings file %s not found, creating defaults", path)
	case err != nil:
		return nil, fmt.Errorf("failed to read settings: %w", err)
	default:
		if err := json.Unmarshal(data, &s.settings); err != nil {
			logrus.Warnf("Settings file %s is corrupted, resetting: %v", path, err)
			s.settings = entity.Settings{}
		}
	}
	if s.settings.MapRoles == nil {
		s.settings.MapRoles = make(map[string]string)
	}

	if err := s.saveLocked(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *settingsService) Get() entity.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.settings
	out.MapRoles = make(map[string]string, len(s.settings.MapRoles))
	for name, role := range s.settings.MapRoles {
		out.MapRoles[name] = role
	}
	return out
}

func (s *settingsService) SetLFGChannel(id string) error {
	return s.update(func(cfg *entity.Settings) error {
		cfg.LFGChannelID = id
		return nil
	})
}

func (s *settingsService) SetNavChannel(id string) error {
	return s.update(func(cfg *entity.Settings) error {
		cfg.NavChannelID = id
		return nil
	})
}

func (s *settingsService) SetArbitrationRole(id string) error {
	return s.update(func(cfg *entity.Settings) error {
		cfg.ArbitrationRoleID = id
		return nil
	})
}

func (s *settingsService) SetCascadeRole(id string) error {
	return s.update(func(cfg *entity.Settings) error {
		cfg.CascadeRoleID = id
		return nil
	})
}

func (s *settingsService) SetMapRole(mapName, roleID string) error {
	return s.update(func(cfg *entity.Settings) error {
		if !entity.KnownMapName(mapName) {
			return entity.ErrUnknownMap
		}
		cfg.MapRoles[mapName] = roleID
		return nil
	})
}

func (s *settingsService) update(apply func(*entity.Settings) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := apply(&s.settings); err != nil {
		return err
	}
	return s.saveLocked()
}

func (s *settingsService) saveLocked() error {
	data, err := json.MarshalIndent(s.settings, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
