package controller

import (
	"bufio"
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"research-tutor-be/internal/dto"
	"research-tutor-be/internal/pkg/serverutils"
	"research-tutor-be/internal/service"
	"research-tutor-be/pkg/rag/generate"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Send(ctx *fiber.Ctx) error
	SendStream(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{
		chatService: chatService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Use(serverutils.OwnerRefMiddleware)
	h.Post("send", c.Send)
	h.Post("send-stream", c.SendStream)
	h.Get("history", c.History)
}

func (c *chatController) Send(ctx *fiber.Ctx) error {
	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.Send(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success send message", res))
}

// SendStream answers over server-sent events: one citations event up front,
// a fragment event per model delta, then done or aborted. The service keeps
// finalization server-side, so dropping the connection mid-stream only stops
// delivery, not the generation's bookkeeping.
func (c *chatController) SendStream(ctx *fiber.Ctx) error {
	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	stream, err := c.chatService.SendStream(ctx.Context(), &req)
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")

	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		writeSSE(w, "citations", stream.Citations)
		if err := w.Flush(); err != nil {
			stream.Generation.Abort()
			drain(stream.Generation)
			return
		}

		for fragment := range stream.Generation.Fragments() {
			writeSSE(w, "fragment", map[string]string{"text": fragment})
			if err := w.Flush(); err != nil {
				// Client went away. Abort delivery; the background
				// finalizer decides what happens to the reply.
				stream.Generation.Abort()
				drain(stream.Generation)
				return
			}
		}

		result := stream.Generation.Wait()
		if result.Outcome == generate.OutcomeFinalized {
			writeSSE(w, "done", map[string]interface{}{
				"fragments": result.FragmentCount,
				"empty":     result.FragmentCount == 0,
			})
		} else {
			writeSSE(w, "aborted", map[string]interface{}{
				"fragments": result.FragmentCount,
			})
		}
		_ = w.Flush()
	}))

	return nil
}

func (c *chatController) History(ctx *fiber.Ctx) error {
	sessionId, err := uuid.Parse(ctx.Query("session_id"))
	if err != nil {
		return serverutils.NewBadRequest("Invalid session_id query parameter")
	}

	res, err := c.chatService.History(ctx.Context(), sessionId, ctx.QueryInt("step", 0))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get history", res))
}

func writeSSE(w *bufio.Writer, event string, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
}

func drain(g *generate.Generation) {
	for range g.Fragments() {
	}
	g.Wait()
}
