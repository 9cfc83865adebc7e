package backup

import (
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

const (
	confFolderName = "backup"
	destFolderName = "backup_dest"
	paramsFileName = "backup_info.json"
)

// Setup creates the backup folder layout under rootDir and writes the
// parameter file that the periodic backup reads.
type Setup struct {
	RootDir string
}

type SetupResult struct {
	ConfFolder string
	DestFolder string
	ParamsFile string
}

func (s *Setup) Run(params *Params) (*SetupResult, error) {
	confFolder := filepath.Join(s.RootDir, confFolderName)
	destFolder := filepath.Join(confFolder, destFolderName)

	for _, dir := range []string{confFolder, destFolder} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create backup folder %s: %w", dir, err)
		}
	}

	if params.BackupDir == "" {
		params.BackupDir = destFolder
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	paramsFile := filepath.Join(confFolder, paramsFileName)
	if err := params.Save(paramsFile); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"conf_folder": confFolder,
		"dest_folder": destFolder,
		"params_file": paramsFile,
	}).Info("backup setup completed")

	return &SetupResult{
		ConfFolder: confFolder,
		DestFolder: destFolder,
		ParamsFile: paramsFile,
	}, nil
}
