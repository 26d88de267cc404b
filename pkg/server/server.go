package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/guardrails/orchestrator/pkg/handlers"
	"github.com/guardrails/orchestrator/pkg/orcherrors"
	"github.com/guardrails/orchestrator/pkg/orchestrator"
	"github.com/guardrails/orchestrator/pkg/sseio"
	"github.com/guardrails/orchestrator/pkg/types"
)

// New builds the orchestrator's HTTP surface: one route per task
// variant from spec.md §2, plus a health probe independent of task
// lifetime (spec.md §5).
func New(octx *orchestrator.Context) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	r.GET("/health", handleHealth)

	r.POST("/api/v1/task/classification-with-text-generation", handleClassificationWithGen(octx))
	r.POST("/api/v1/task/server-streaming-classification-with-text-generation", handleStreamingClassificationWithGen(octx))
	r.POST("/api/v1/chat/completions", handleChatCompletionsDetection(octx))
	r.POST("/api/v1/task/detection/text/generated", handleDetectionOnGeneration(octx))
	r.POST("/api/v1/task/detection/text/content", handleDetectionOnPrompt(octx))

	return r
}

// corsMiddleware wraps go-chi/cors' standard net/http middleware for
// use as a gin handler, matching the permissive default the teacher's
// example servers use.
func corsMiddleware() gin.HandlerFunc {
	handler := cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"*"},
	})
	return func(c *gin.Context) {
		handled := false
		handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handled = true
			c.Next()
		})).ServeHTTP(c.Writer, c.Request)
		if !handled {
			c.Abort()
		}
	}
}

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func traceID(c *gin.Context) string {
	if id := c.GetHeader("X-Trace-Id"); id != "" {
		return id
	}
	return uuid.NewString()
}

func passthroughHeaders(c *gin.Context, passthrough []string) map[string]string {
	headers := make(map[string]string, len(passthrough))
	for _, name := range passthrough {
		if v := c.GetHeader(name); v != "" {
			headers[name] = v
		}
	}
	return headers
}

func writeError(c *gin.Context, err error) {
	status := orcherrors.StatusCode(err)
	if status == http.StatusInternalServerError {
		c.JSON(status, gin.H{"code": status, "details": orcherrors.Details})
		return
	}
	c.JSON(status, gin.H{"code": status, "details": err.Error()})
}

func marshalStreamResult(v *types.ClassifiedGeneratedTextStreamResult) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func handleClassificationWithGen(octx *orchestrator.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req guardrailsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"code": http.StatusUnprocessableEntity, "details": bindingErrorMessage(req, err)})
			return
		}

		task := toGuardrailsTask(traceID(c), req, passthroughHeaders(c, octx.Config.PassthroughHeaders))
		result, err := handlers.ClassificationWithGen(c.Request.Context(), octx, task)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func handleStreamingClassificationWithGen(octx *orchestrator.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req guardrailsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"code": http.StatusUnprocessableEntity, "details": bindingErrorMessage(req, err)})
			return
		}

		task := toStreamingGuardrailsTask(traceID(c), req, passthroughHeaders(c, octx.Config.PassthroughHeaders))
		results := handlers.StreamingClassificationWithGen(c.Request.Context(), octx, task)

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")
		c.Writer.Header().Set("X-Accel-Buffering", "no")

		w := sseio.NewWriter(c.Writer)
		for r := range results {
			if r.Err != nil {
				status := orcherrors.StatusCode(r.Err)
				_ = w.WriteData(fmt.Sprintf(`{"code":%d,"details":%q}`, status, r.Err.Error()))
				c.Writer.Flush()
				return
			}
			payload, err := marshalStreamResult(r.Value)
			if err != nil {
				return
			}
			if err := w.WriteData(payload); err != nil {
				return
			}
			c.Writer.Flush()
		}
	}
}

func handleChatCompletionsDetection(octx *orchestrator.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req chatCompletionsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"code": http.StatusUnprocessableEntity, "details": bindingErrorMessage(req, err)})
			return
		}

		task := orchestrator.ChatCompletionsDetectionTask{
			TraceID:          traceID(c),
			Model:            req.Model,
			Messages:         chatMessagesToInternal(req.Messages),
			Tools:            req.Tools,
			Stream:           req.Stream,
			GuardrailsConfig: req.Detectors.toGuardrailsConfig(),
			Headers:          passthroughHeaders(c, octx.Config.PassthroughHeaders),
		}
		result, err := handlers.ChatCompletionsDetection(c.Request.Context(), octx, task)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func handleDetectionOnGeneration(octx *orchestrator.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req detectionOnGenerationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"code": http.StatusUnprocessableEntity, "details": bindingErrorMessage(req, err)})
			return
		}
		if len(req.Detectors) == 0 {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"code": http.StatusUnprocessableEntity, "details": "`detectors` is required"})
			return
		}

		task := orchestrator.DetectionOnGenerationTask{
			TraceID:       traceID(c),
			Prompt:        req.Prompt,
			GeneratedText: req.GeneratedText,
			Detectors:     req.Detectors,
			Headers:       passthroughHeaders(c, octx.Config.PassthroughHeaders),
		}
		result, err := handlers.DetectionOnGeneration(c.Request.Context(), octx, task)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func handleDetectionOnPrompt(octx *orchestrator.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req detectionOnPromptRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"code": http.StatusUnprocessableEntity, "details": bindingErrorMessage(req, err)})
			return
		}
		if len(req.Detectors) == 0 {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"code": http.StatusUnprocessableEntity, "details": "`detectors` is required"})
			return
		}

		task := orchestrator.DetectionOnPromptTask{
			TraceID:     traceID(c),
			Inputs:      req.Inputs,
			Context:     req.Context,
			ContextType: string(req.ContextType),
			Detectors:   req.Detectors,
			Headers:     passthroughHeaders(c, octx.Config.PassthroughHeaders),
		}
		result, err := handlers.DetectionOnPrompt(c.Request.Context(), octx, task)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
