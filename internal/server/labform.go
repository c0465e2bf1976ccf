package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	labformdomain "github.com/smallbiznis/labform/internal/labform/domain"
)

const rootMessage = "✅ Lab Form API is running on Vercel..."

func (s *Server) Root(c *gin.Context) {
	c.String(http.StatusOK, rootMessage)
}

func (s *Server) CreateLabForm(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		AbortWithError(c, saveFailed(err))
		return
	}

	req, err := labformdomain.DecodeCreateRequest(body)
	if err != nil {
		if errors.Is(err, labformdomain.ErrMalformedBody) {
			AbortWithError(c, err)
			return
		}
		AbortWithError(c, saveFailed(err))
		return
	}

	resp, err := s.labformSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, saveFailed(err))
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (s *Server) ListLabForms(c *gin.Context) {
	// An empty carNo behaves as absent.
	resp, err := s.labformSvc.List(c.Request.Context(), labformdomain.ListRequest{
		CarNo: c.Query("carNo"),
	})
	if err != nil {
		AbortWithError(c, newHTTPError(http.StatusInternalServerError, errorResponse{Error: "Failed to fetch data"}, err))
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) DeleteLabForm(c *gin.Context) {
	err := s.labformSvc.Delete(c.Request.Context(), c.Param("id"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, deleteResponse{Success: true, Message: "Entry deleted"})
	case errors.Is(err, labformdomain.ErrNotFound):
		AbortWithError(c, newHTTPError(http.StatusNotFound, deleteResponse{Success: false, Message: "Entry not found"}, err))
	default:
		AbortWithError(c, newHTTPError(http.StatusInternalServerError, deleteResponse{Success: false, Message: "Error deleting entry"}, err))
	}
}

func saveFailed(err error) error {
	return newHTTPError(http.StatusInternalServerError, errorResponse{Error: "Failed to save form data"}, err)
}
