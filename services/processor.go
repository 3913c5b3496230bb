package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"reelsmith/common"
	"reelsmith/config"
	"reelsmith/engine"
	"reelsmith/types"
)

// ReelProcessor runs the reel pipeline around the compositing engine:
// resolve job media, composite, persist the finished reel, record status.
type ReelProcessor struct {
	s3        *common.S3
	status    *StatusStore
	bucket    string
	localMode bool
}

// NewReelProcessor initializes the processor. Missing S3 credentials or an
// unreachable Redis put it in local mode: object keys are treated as
// filesystem paths, finished reels land in the output directory and status
// is only logged. This keeps batch runs working without any infrastructure.
func NewReelProcessor(ctx context.Context) (*ReelProcessor, error) {
	p := &ReelProcessor{bucket: os.Getenv("MEDIA_BUCKET")}

	s3, err := common.NewS3(ctx, common.S3Config{Region: os.Getenv("AWS_REGION")})
	if err != nil || p.bucket == "" {
		log.Printf("S3 not configured (bucket=%q): running in LOCAL mode", p.bucket)
		p.localMode = true
	} else {
		p.s3 = s3
	}

	if status, err := NewStatusStore(); err != nil {
		log.Printf("Status store not available: %v", err)
	} else {
		p.status = status
	}

	return p, nil
}

// Status exposes the request status store; nil when Redis is unavailable.
func (p *ReelProcessor) Status() *StatusStore { return p.status }

// ProcessFromDirectory processes all reel request JSON files in inputDir
// with bounded concurrency.
func (p *ReelProcessor) ProcessFromDirectory(ctx context.Context, inputDir string) error {
	jsonFiles, err := filepath.Glob(filepath.Join(inputDir, "*.json"))
	if err != nil {
		return fmt.Errorf("failed to read input directory: %w", err)
	}
	if len(jsonFiles) == 0 {
		log.Printf("No request files found in %s", inputDir)
		return nil
	}

	log.Printf("Found %d reel requests to process", len(jsonFiles))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, config.MaxConcurrentJobs)
	for i, jsonFile := range jsonFiles {
		wg.Add(1)
		go func(idx int, file string) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			if err := p.ProcessSingleFile(ctx, file, idx+1, len(jsonFiles)); err != nil {
				log.Printf("Failed to process %s: %v", file, err)
			}

			if idx < len(jsonFiles)-1 {
				time.Sleep(config.JobBatchDelay)
			}
		}(i, jsonFile)
	}

	wg.Wait()
	log.Println("All reel requests processed")
	return nil
}

// ProcessSingleFile processes one reel request from a JSON file.
func (p *ReelProcessor) ProcessSingleFile(ctx context.Context, jsonFile string, current, total int) error {
	log.Printf("[%d/%d] Processing: %s", current, total, filepath.Base(jsonFile))

	data, err := os.ReadFile(jsonFile)
	if err != nil {
		return fmt.Errorf("failed to read request file: %w", err)
	}

	var req types.ReelRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("failed to parse request file: %w", err)
	}
	if req.RequestID == "" {
		req.RequestID = filepath.Base(jsonFile)
	}

	return p.ProcessRequest(ctx, req)
}

// ProcessRequest runs one reel job end to end. Overlay-level skips are
// recorded in the result and never fail the job; config, background and
// encode failures mark the request failed.
func (p *ReelProcessor) ProcessRequest(ctx context.Context, req types.ReelRequest) error {
	p.setStatus(ctx, types.ReelStatus{RequestID: req.RequestID, State: types.StatusProcessing})

	workDir, err := os.MkdirTemp("", "reelsmith-"+req.RequestID+"-")
	if err != nil {
		return p.fail(ctx, req, fmt.Errorf("failed to create work dir: %w", err))
	}
	defer os.RemoveAll(workDir)

	backgroundPath, err := p.resolveMedia(ctx, req.BackgroundKey, workDir)
	if err != nil {
		return p.fail(ctx, req, fmt.Errorf("failed to fetch background video: %w", err))
	}

	imagePaths := make([]string, 0, len(req.ImageKeys))
	for _, key := range req.ImageKeys {
		path, err := p.resolveMedia(ctx, key, workDir)
		if err != nil {
			return p.fail(ctx, req, fmt.Errorf("failed to fetch image %s: %w", key, err))
		}
		imagePaths = append(imagePaths, path)
	}

	outputPath := filepath.Join(workDir, req.RequestID+".mp4")
	if p.localMode {
		if err := os.MkdirAll(config.OutputDir, 0o755); err != nil {
			return p.fail(ctx, req, fmt.Errorf("failed to create output dir: %w", err))
		}
		outputPath = filepath.Join(config.OutputDir, req.RequestID+".mp4")
	}
	log.Printf("Compositing reel %s (%d images, background %s)",
		req.RequestID, len(imagePaths), filepath.Base(backgroundPath))

	result, err := engine.Composite(ctx, engine.Job{
		BackgroundPath: backgroundPath,
		ImagePaths:     imagePaths,
		ConfigDocument: string(req.OverlayConfig),
		TemplateVars:   req.TemplateVars,
		OutputPath:     outputPath,
	})
	if err != nil {
		return p.fail(ctx, req, fmt.Errorf("compositing failed: %w", err))
	}

	for _, ov := range result.Overlays {
		if !ov.Applied {
			log.Printf("Reel %s: overlay %d (%s) skipped: %s", req.RequestID, ov.Index, ov.Type, ov.Reason)
		}
	}

	outputKey, err := p.persistReel(ctx, req, outputPath)
	if err != nil {
		return p.fail(ctx, req, fmt.Errorf("failed to persist reel: %w", err))
	}

	p.setStatus(ctx, types.ReelStatus{
		RequestID: req.RequestID,
		State:     types.StatusDone,
		OutputKey: outputKey,
		Overlays:  result.Overlays,
	})
	log.Printf("Reel %s done: %s", req.RequestID, outputKey)
	return nil
}

// resolveMedia makes a job input locally readable: in local mode the key is
// already a path, otherwise the object is downloaded into the work dir.
func (p *ReelProcessor) resolveMedia(ctx context.Context, key, workDir string) (string, error) {
	if p.localMode {
		if _, err := os.Stat(key); err != nil {
			return "", err
		}
		return key, nil
	}

	localPath := filepath.Join(workDir, filepath.Base(key))
	if err := p.s3.DownloadFile(ctx, p.bucket, key, localPath); err != nil {
		return "", err
	}
	return localPath, nil
}

// persistReel uploads the finished file and returns the key (or local
// path) recorded in the request status. In local mode the engine already
// wrote straight into the output directory.
func (p *ReelProcessor) persistReel(ctx context.Context, req types.ReelRequest, outputPath string) (string, error) {
	if p.localMode {
		return outputPath, nil
	}

	outputKey := req.OutputKey
	if outputKey == "" {
		outputKey = req.RequestID + ".mp4"
	}
	if err := p.s3.UploadFile(ctx, p.bucket, outputKey, outputPath, config.OutputContentType); err != nil {
		return "", err
	}
	return outputKey, nil
}

func (p *ReelProcessor) fail(ctx context.Context, req types.ReelRequest, err error) error {
	p.setStatus(ctx, types.ReelStatus{
		RequestID: req.RequestID,
		State:     types.StatusFailed,
		Error:     err.Error(),
	})
	return err
}

func (p *ReelProcessor) setStatus(ctx context.Context, st types.ReelStatus) {
	if p.status == nil {
		return
	}
	if err := p.status.Set(ctx, st); err != nil {
		log.Printf("Failed to record status for %s: %v", st.RequestID, err)
	}
}
