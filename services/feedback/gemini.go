package feedbacksvc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"vlogvalidator/core"
)

// geminiService produces the encouragement message with the Gemini API.
// Generation is bounded and degrades to core.DefaultEncouragement on missing
// credential, timeout or any upstream error; a timed-out call may still
// finish in the background but its response is discarded with the context.
type geminiService struct {
	apiKey  string
	model   string
	timeout time.Duration
	logger  core.Logger
}

var _ core.FeedbackService = (*geminiService)(nil)

func NewGeminiService(conf *core.Config, logger core.Logger) *geminiService {
	return &geminiService{
		apiKey:  conf.Gemini.APIKey,
		model:   conf.Gemini.Model,
		timeout: conf.Gemini.Timeout,
		logger:  logger,
	}
}

func (svc *geminiService) Encourage(ctx context.Context, studentName, videoTitle, class string) core.Feedback {
	degraded := core.Feedback{Text: core.DefaultEncouragement, Degraded: true}

	if svc.apiKey == "" {
		svc.logger.Warn("Gemini API key not configured, returning default feedback")
		return degraded
	}

	ctx, cancel := context.WithTimeout(ctx, svc.timeout)
	defer cancel()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: svc.apiKey})
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("creating Gemini client: %v", err))
		return degraded
	}

	prompt := fmt.Sprintf(
		"Seorang siswa bernama %q dari kelas %q baru saja mengumpulkan tugas vlog berjudul %q. "+
			"Buatlah pesan penyemangat yang sangat singkat (maksimal 1 kalimat) dalam Bahasa Indonesia "+
			"untuk mengonfirmasi penerimaan tugas. Jangan mengkritik video, cukup akui pengumpulan "+
			"tugas dengan antusias dan positif.",
		studentName, class, videoTitle,
	)

	resp, err := client.Models.GenerateContent(ctx, svc.model, genai.Text(prompt), nil)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("Gemini generation failed, returning default feedback: %v", err))
		return degraded
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return degraded
	}
	return core.Feedback{Text: text}
}
