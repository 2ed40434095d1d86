package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"papex_backend/internal/clients/transport"
	"papex_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest  = "Requête invalide."
	msgMissingLead     = "Identifiant du lead manquant."
	msgMissingLeadID   = "lead_id manquant."
	msgMissingFile     = "Fichier manquant."
	msgAdminOnly       = "Seul un administrateur peut supprimer un lead."
	maxMultipartMemory = 32 << 20
)

// ClientService is the part of the clients service the handler drives.
type ClientService interface {
	Upsert(ctx context.Context, leadID int64, req transport.ClientRequest) (transport.ClientResponse, error)
	Get(ctx context.Context, id int64) (transport.ClientResponse, error)
	GetByLead(ctx context.Context, leadID int64) (transport.ClientResponse, error)
	List(ctx context.Context) ([]transport.ClientResponse, error)
	UploadDocument(ctx context.Context, clientID int64, name, fileName, contentType string, data []byte) (transport.DocumentResponse, error)
	CreateContract(ctx context.Context, clientID int64, req transport.ContractRequest, author uuid.UUID) (transport.ContractResponse, error)
	GetContract(ctx context.Context, id int64) (transport.ContractResponse, error)
	SendContract(ctx context.Context, id int64) error
	CreateReceipt(ctx context.Context, clientID int64, req transport.ReceiptRequest) (transport.ReceiptResponse, error)
	SendReceipts(ctx context.Context, clientID int64) (int, error)
	CascadeDeleteByLead(ctx context.Context, leadID int64) (transport.CascadeResponse, error)
}

type Handler struct {
	svc ClientService
}

func New(svc ClientService) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the client routes on an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Upsert)
	rg.GET("", h.List)
	rg.DELETE("/cascade-delete-by-lead", httpkit.RequireRoles(msgAdminOnly, "ADMIN"), h.CascadeDelete)
	rg.GET("/:id", h.Get)
	rg.POST("/:id/documents", h.UploadDocument)
	rg.POST("/:id/contracts", h.CreateContract)
	rg.POST("/:id/receipts", h.CreateReceipt)
	rg.POST("/:id/receipts/send-email", h.SendReceipts)
}

// RegisterContractRoutes mounts the contract routes on an authenticated group.
func (h *Handler) RegisterContractRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id", h.GetContract)
	rg.POST("/:id/send-email", h.SendContract)
}

func queryID(c *gin.Context, name string) (int64, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	return id, err == nil && id > 0
}

func (h *Handler) Upsert(c *gin.Context) {
	leadID, ok := queryID(c, "id")
	if !ok {
		httpkit.Error(c, http.StatusBadRequest, msgMissingLead, nil)
		return
	}
	var req transport.ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	out, err := h.svc.Upsert(c.Request.Context(), leadID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, out)
}

func (h *Handler) List(c *gin.Context) {
	if c.Query("lead_id") != "" {
		leadID, ok := queryID(c, "lead_id")
		if !ok {
			httpkit.Error(c, http.StatusBadRequest, "Identifiant invalide.", nil)
			return
		}
		out, err := h.svc.GetByLead(c.Request.Context(), leadID)
		if httpkit.HandleError(c, err) {
			return
		}
		httpkit.OK(c, out)
		return
	}

	out, err := h.svc.List(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, out)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := httpkit.ParseID(c, "id")
	if !ok {
		return
	}
	out, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, out)
}

func (h *Handler) UploadDocument(c *gin.Context) {
	id, ok := httpkit.ParseID(c, "id")
	if !ok {
		return
	}
	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgMissingFile, nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgMissingFile, nil)
		return
	}
	defer func() { _ = f.Close() }()
	data, err := io.ReadAll(f)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgMissingFile, nil)
		return
	}

	out, err := h.svc.UploadDocument(c.Request.Context(), id, c.PostForm("name"), fh.Filename, fh.Header.Get("Content-Type"), data)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, out)
}

func (h *Handler) CreateContract(c *gin.Context) {
	id, ok := httpkit.ParseID(c, "id")
	if !ok {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	var req transport.ContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	out, err := h.svc.CreateContract(c.Request.Context(), id, req, identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, out)
}

func (h *Handler) GetContract(c *gin.Context) {
	id, ok := httpkit.ParseID(c, "id")
	if !ok {
		return
	}
	out, err := h.svc.GetContract(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, out)
}

func (h *Handler) SendContract(c *gin.Context) {
	id, ok := httpkit.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.SendContract(c.Request.Context(), id); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, httpkit.Detail{Detail: "Contrat envoyé par e-mail."})
}

func (h *Handler) CreateReceipt(c *gin.Context) {
	id, ok := httpkit.ParseID(c, "id")
	if !ok {
		return
	}
	var req transport.ReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	out, err := h.svc.CreateReceipt(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, out)
}

func (h *Handler) SendReceipts(c *gin.Context) {
	id, ok := httpkit.ParseID(c, "id")
	if !ok {
		return
	}
	n, err := h.svc.SendReceipts(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, httpkit.Detail{Detail: fmt.Sprintf("%d reçu(s) envoyé(s) par e-mail.", n)})
}

func (h *Handler) CascadeDelete(c *gin.Context) {
	if strings.TrimSpace(c.Query("lead_id")) == "" {
		httpkit.Error(c, http.StatusBadRequest, msgMissingLeadID, nil)
		return
	}
	leadID, ok := queryID(c, "lead_id")
	if !ok {
		httpkit.Error(c, http.StatusBadRequest, "Identifiant invalide.", nil)
		return
	}
	out, err := h.svc.CascadeDeleteByLead(c.Request.Context(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, out)
}
