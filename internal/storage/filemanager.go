package storage

import (
	"os"

	json "github.com/goccy/go-json"

	"weschedule/internal/models"
	"weschedule/internal/providers"
	"weschedule/internal/services"
	"weschedule/internal/storage/interfaces"
)

// FileManager persists availability snapshots: JSON, zstd-compressed,
// written atomically via tmp file + rename.
type FileManager struct {
	service    services.AvailabilityServiceInterface
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewFileManager(compressor interfaces.CompressorInterface, service services.AvailabilityServiceInterface, logger providers.Logger) *FileManager {
	return &FileManager{
		compressor: compressor,
		service:    service,
		logger:     logger,
	}
}

func (f *FileManager) SaveToFile(fileName string) error {
	snapshot := f.service.GetSnapshot()

	jsonData, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

func (f *FileManager) LoadFromFile(fileName string) error {
	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	decompressed, err := f.compressor.Decompress(data)
	if err != nil {
		return err
	}

	// Current format: versioned envelope
	var snapshot models.Storage
	if err := json.Unmarshal(decompressed, &snapshot); err == nil && snapshot.Version > 0 && snapshot.Users != nil {
		f.service.PutSnapshot(&snapshot)
		return nil
	}

	// Legacy format: bare userId → record map
	f.logger.Warnf(providers.TypeApp, "Unversioned snapshot found, trying to migrate")
	var users map[string]*models.UserAvailability
	if err := json.Unmarshal(decompressed, &users); err != nil {
		f.logger.Warnf(providers.TypeApp, "Migration failed")
		return err
	}
	f.service.PutSnapshot(&models.Storage{
		Version: models.StorageVersion,
		Users:   users,
	})
	f.logger.Warnf(providers.TypeApp, "Migration from legacy snapshot format successful")
	return nil
}

func (f *FileManager) Close() {
	f.compressor.Close()
}
