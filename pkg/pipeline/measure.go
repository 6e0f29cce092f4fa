package pipeline

import (
	"os"

	"paperradio/pkg/domain"
	scriptgen "paperradio/pkg/script"
)

func statFile(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func estimateScriptDuration(s *domain.Script) int {
	if s == nil {
		return 0
	}
	return scriptgen.EstimateDuration(s)
}
