package storage

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"weschedule/internal/models"
	"weschedule/internal/providers"
	"weschedule/internal/storage/interfaces"
	"weschedule/internal/structures"
)

const coldFileName = "availability.cold.zst"

// ColdEntry is a single archived availability record.
type ColdEntry struct {
	Record    *models.UserAvailability `json:"record"`
	EvictedAt time.Time                `json:"evicted_at"`
}

// ColdFile is the on-disk format of the archive.
type ColdFile struct {
	Entries map[string]*ColdEntry `json:"entries"`
}

// ColdStorage archives availability records swept from the hot store.
// Writes are buffered in pending and only hit disk in Flush; restores mark
// entries for lazy deletion at the next Flush. Implements
// services.ColdStorageInterface.
type ColdStorage struct {
	mu         sync.RWMutex
	dir        string
	index      map[string]struct{}
	pending    map[string]*ColdEntry
	restored   map[string]struct{}
	loaded     *ColdFile
	coldTTL    time.Duration
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewColdStorage(conf *structures.Config, compressor interfaces.CompressorInterface, logger providers.Logger) *ColdStorage {
	return &ColdStorage{
		dir:        conf.Engine.ColdStorageDir,
		index:      make(map[string]struct{}),
		pending:    make(map[string]*ColdEntry),
		restored:   make(map[string]struct{}),
		coldTTL:    conf.Engine.ColdTTL,
		compressor: compressor,
		logger:     logger,
	}
}

// Has checks whether a user's record sits in the archive (index or pending).
func (cs *ColdStorage) Has(userID string) bool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	_, ok := cs.index[userID]
	return ok
}

// Evict buffers a swept record for the next Flush. No disk I/O.
func (cs *ColdStorage) Evict(rec *models.UserAvailability) {
	if rec == nil || rec.UserID == "" {
		return
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.pending[rec.UserID] = &ColdEntry{
		Record:    rec.Clone(),
		EvictedAt: time.Now().UTC(),
	}
	cs.index[rec.UserID] = struct{}{}
}

// Restore fetches a record back out of the archive (pending buffer or disk).
// The on-disk entry is removed lazily at the next Flush.
func (cs *ColdStorage) Restore(userID string) (*models.UserAvailability, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if entry, ok := cs.pending[userID]; ok {
		delete(cs.pending, userID)
		delete(cs.index, userID)
		return entry.Record, nil
	}

	coldFile := cs.getOrLoadColdFile()
	if coldFile == nil {
		delete(cs.index, userID)
		return nil, nil
	}

	entry, ok := coldFile.Entries[userID]
	if !ok {
		delete(cs.index, userID)
		return nil, nil
	}

	cs.restored[userID] = struct{}{}
	delete(cs.index, userID)
	return entry.Record, nil
}

// Flush writes pending entries to disk, applies lazy deletes and drops
// entries older than coldTTL. The only method that writes the archive file.
func (cs *ColdStorage) Flush() error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if len(cs.pending) == 0 && len(cs.restored) == 0 {
		return nil
	}

	coldFile := cs.getOrLoadColdFile()
	if coldFile == nil {
		coldFile = &ColdFile{Entries: make(map[string]*ColdEntry)}
	}

	for userID := range cs.restored {
		delete(coldFile.Entries, userID)
	}
	for userID, entry := range cs.pending {
		coldFile.Entries[userID] = entry
	}

	if cs.coldTTL > 0 {
		now := time.Now()
		for userID, entry := range coldFile.Entries {
			if now.Sub(entry.EvictedAt) > cs.coldTTL {
				delete(coldFile.Entries, userID)
				delete(cs.index, userID)
			}
		}
	}

	if len(coldFile.Entries) > 0 {
		if err := cs.writeColdFile(coldFile); err != nil {
			return err
		}
		cs.loaded = coldFile
	} else {
		os.Remove(cs.coldFilePath())
		cs.loaded = nil
	}

	cs.pending = make(map[string]*ColdEntry)
	cs.restored = make(map[string]struct{})
	return nil
}

// RestoreIndex scans the archive file and rebuilds the in-memory index of
// archived user IDs. Called once at startup.
func (cs *ColdStorage) RestoreIndex() error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if err := os.MkdirAll(cs.dir, 0755); err != nil {
		return err
	}

	coldFile := cs.loadColdFileFromDisk()
	if coldFile == nil {
		return nil
	}
	cs.index = make(map[string]struct{}, len(coldFile.Entries))
	for userID := range coldFile.Entries {
		cs.index[userID] = struct{}{}
	}
	// Only index keys are kept resident; entries load lazily on Restore.
	return nil
}

func (cs *ColdStorage) Close() {
	cs.compressor.Close()
}

// getOrLoadColdFile returns the cached archive or loads it from disk.
// Must be called under cs.mu.Lock().
func (cs *ColdStorage) getOrLoadColdFile() *ColdFile {
	if cs.loaded != nil {
		return cs.loaded
	}
	cf := cs.loadColdFileFromDisk()
	if cf != nil {
		cs.loaded = cf
	}
	return cf
}

func (cs *ColdStorage) loadColdFileFromDisk() *ColdFile {
	path := cs.coldFilePath()
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			cs.logger.Errorf(providers.TypeApp, "Failed to read cold file %s: %s", path, err)
		}
		return nil
	}

	decompressed, err := cs.compressor.Decompress(data)
	if err != nil {
		cs.logger.Errorf(providers.TypeApp, "Failed to decompress cold file %s: %s", path, err)
		return nil
	}

	var cf ColdFile
	if err := json.Unmarshal(decompressed, &cf); err != nil {
		cs.logger.Errorf(providers.TypeApp, "Failed to parse cold file %s: %s", path, err)
		return nil
	}
	if cf.Entries == nil {
		cf.Entries = make(map[string]*ColdEntry)
	}
	return &cf
}

func (cs *ColdStorage) writeColdFile(cf *ColdFile) error {
	jsonData, err := json.Marshal(cf)
	if err != nil {
		return err
	}
	compressed, err := cs.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cs.dir, 0755); err != nil {
		return err
	}

	path := cs.coldFilePath()
	tmpFile := path + ".tmp"
	if err := os.WriteFile(tmpFile, compressed, 0644); err != nil {
		return err
	}
	return os.Rename(tmpFile, path)
}

func (cs *ColdStorage) coldFilePath() string {
	return filepath.Join(cs.dir, coldFileName)
}
