// Package artifacts реализует файловое хранилище аудио-артефактов:
// сгенерированных WAV-файлов и образцов для клонирования голоса.
// Файлы именуются по uuid, путь наружу отдается только через записи БД.
package artifacts

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const (
	filePermissions = 0o600
	dirPermissions  = 0o750
)

// Store хранит артефакты в двух каталогах: для генераций и для образцов.
type Store struct {
	generatedDir string
	samplesDir   string
}

// New создаёт Store и каталоги, если их ещё нет.
func New(generatedDir, samplesDir string) (*Store, error) {
	const op = "artifacts.New"
	for _, dir := range []string{generatedDir, samplesDir} {
		if err := os.MkdirAll(dir, dirPermissions); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	return &Store{
		generatedDir: generatedDir,
		samplesDir:   samplesDir,
	}, nil
}

// SaveGenerated сохраняет WAV сгенерированной речи и возвращает путь к файлу.
func (s *Store) SaveGenerated(data []byte) (string, error) {
	const op = "artifacts.SaveGenerated"
	path := filepath.Join(s.generatedDir, uuid.New().String()+".wav")
	if err := os.WriteFile(path, data, filePermissions); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return path, nil
}

// SaveSample сохраняет образец аудио для клонированного голоса.
// Исходное имя файла участвует в имени только расширением.
func (s *Store) SaveSample(data []byte, originalName string) (string, error) {
	const op = "artifacts.SaveSample"
	ext := filepath.Ext(originalName)
	if ext == "" {
		ext = ".wav"
	}
	path := filepath.Join(s.samplesDir, "clone_"+uuid.New().String()+ext)
	if err := os.WriteFile(path, data, filePermissions); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return path, nil
}

// Open открывает сохранённый артефакт для чтения с поддержкой Seek,
// чтобы HTTP-слой мог отдавать файл с Range-запросами.
func (s *Store) Open(path string) (io.ReadSeekCloser, error) {
	const op = "artifacts.Open"
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return f, nil
}

// Remove удаляет артефакт. Отсутствующий файл ошибкой не считается:
// запись в БД могла пережить файл.
func (s *Store) Remove(path string) error {
	const op = "artifacts.Remove"
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
