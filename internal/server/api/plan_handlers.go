package api

import (
	"net/http"

	"github.com/dmitrijs2005/tradejournal/internal/server/models"
	"github.com/gin-gonic/gin"
)

type assetRequest struct {
	AssetName string `json:"assetName"`
}

type planRequest struct {
	Title string `json:"title"`
}

type stepRequest struct {
	Title *string `json:"title"`
	Order *int    `json:"order"`
}

type reorderRequest struct {
	StepIDs []string `json:"stepIds"`
}

func (s *Server) listAssets(c *gin.Context) {
	list, err := s.svc.Assets.List(c.Request.Context(), currentUser(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assets": nonNil(list)})
}

func (s *Server) createAsset(c *gin.Context) {
	var req assetRequest
	if err := bind(c, &req); err != nil {
		s.fail(c, err)
		return
	}

	asset, err := s.svc.Assets.Create(c.Request.Context(), currentUser(c), req.AssetName)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "asset": asset})
}

func (s *Server) deleteAsset(c *gin.Context) {
	if err := s.svc.Assets.Delete(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) listPlans(c *gin.Context) {
	list, err := s.svc.Plans.ListPlans(c.Request.Context(), currentUser(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": nonNil(list)})
}

func (s *Server) createPlan(c *gin.Context) {
	var req planRequest
	if err := bind(c, &req); err != nil {
		s.fail(c, err)
		return
	}

	plan, err := s.svc.Plans.CreatePlan(c.Request.Context(), currentUser(c), req.Title)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "plan": plan})
}

func (s *Server) deletePlan(c *gin.Context) {
	n, err := s.svc.Plans.DeletePlan(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "deletedSteps": n})
}

func (s *Server) listSteps(c *gin.Context) {
	list, err := s.svc.Plans.ListSteps(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"steps": nonNil(list)})
}

func (s *Server) createStep(c *gin.Context) {
	var req stepRequest
	if err := bind(c, &req); err != nil {
		s.fail(c, err)
		return
	}

	title := ""
	if req.Title != nil {
		title = *req.Title
	}

	step, err := s.svc.Plans.CreateStep(c.Request.Context(), currentUser(c), c.Param("id"), title, req.Order)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "step": step})
}

func (s *Server) updateStep(c *gin.Context) {
	var req stepRequest
	if err := bind(c, &req); err != nil {
		s.fail(c, err)
		return
	}

	step, err := s.svc.Plans.UpdateStep(c.Request.Context(), currentUser(c), c.Param("id"), models.StepPatch{
		Title: req.Title,
		Order: req.Order,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "step": step})
}

func (s *Server) deleteStep(c *gin.Context) {
	if err := s.svc.Plans.DeleteStep(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) reorderSteps(c *gin.Context) {
	var req reorderRequest
	if err := bind(c, &req); err != nil {
		s.fail(c, err)
		return
	}

	list, err := s.svc.Plans.ReorderSteps(c.Request.Context(), currentUser(c), c.Param("id"), req.StepIDs)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "steps": nonNil(list)})
}

// nonNil keeps empty lists encoded as [] rather than null.
func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
