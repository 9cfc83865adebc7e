package handlers

import (
	"provenance-workflow-service/internal/core/services"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	nodeSvc     *services.NodeService
	graphSvc    *services.GraphService
	computerSvc *services.ComputerService
	codeSvc     *services.CodeService
	calcJobSvc  *services.CalcJobService
	processSvc  *services.ProcessService
	inlineSvc   *services.InlineService
}

func New(
	nodeSvc *services.NodeService,
	graphSvc *services.GraphService,
	computerSvc *services.ComputerService,
	codeSvc *services.CodeService,
	calcJobSvc *services.CalcJobService,
	processSvc *services.ProcessService,
	inlineSvc *services.InlineService,
) *Handler {
	return &Handler{
		nodeSvc:     nodeSvc,
		graphSvc:    graphSvc,
		computerSvc: computerSvc,
		codeSvc:     codeSvc,
		calcJobSvc:  calcJobSvc,
		processSvc:  processSvc,
		inlineSvc:   inlineSvc,
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	nodes := rg.Group("/nodes")
	{
		nodes.GET("", h.ListNodes)
		nodes.POST("", h.CreateNode)
		nodes.GET("/:id", h.GetNode)
		nodes.PATCH("/:id", h.UpdateNode)
		nodes.DELETE("/:id", h.DeleteNode)
		nodes.PUT("/:id/attributes", h.SetNodeAttributes)
		nodes.POST("/:id/seal", h.SealNode)
		nodes.PUT("/:id/extras/:key", h.SetNodeExtra)
		nodes.DELETE("/:id/extras/:key", h.DeleteNodeExtra)
		nodes.POST("/:id/links", h.AddLink)
		nodes.DELETE("/:id/links/:label", h.RemoveLink)
		nodes.GET("/:id/inputs", h.GetNodeInputs)
		nodes.GET("/:id/outputs", h.GetNodeOutputs)
		nodes.GET("/:id/ancestors", h.GetNodeAncestors)
		nodes.GET("/:id/descendants", h.GetNodeDescendants)
		nodes.GET("/:id/comments", h.ListComments)
		nodes.POST("/:id/comments", h.AddComment)
	}

	comments := rg.Group("/comments")
	{
		comments.PATCH("/:id", h.UpdateComment)
		comments.DELETE("/:id", h.DeleteComment)
	}

	computers := rg.Group("/computers")
	{
		computers.GET("", h.ListComputers)
		computers.POST("", h.CreateComputer)
		computers.GET("/:id", h.GetComputer)
		computers.PATCH("/:id", h.UpdateComputer)
		computers.DELETE("/:id", h.DeleteComputer)
		computers.GET("/:id/codes", h.ListComputerCodes)
		computers.POST("/:id/codes", h.CreateCode)
	}

	codes := rg.Group("/codes")
	{
		codes.GET("", h.ListCodes)
		codes.GET("/lookup", h.LookupCode)
		codes.GET("/:id", h.GetCode)
		codes.PATCH("/:id", h.UpdateCode)
		codes.DELETE("/:id", h.DeleteCode)
	}

	calcjobs := rg.Group("/calcjobs")
	{
		calcjobs.GET("", h.ListCalcJobs)
		calcjobs.POST("", h.CreateCalcJob)
		calcjobs.GET("/:id", h.GetCalcJob)
		calcjobs.POST("/:id/submit", h.SubmitCalcJob)
		calcjobs.POST("/:id/refresh", h.RefreshCalcJob)
		calcjobs.POST("/:id/transition", h.TransitionCalcJob)
		calcjobs.POST("/:id/kill", h.KillCalcJob)
		calcjobs.POST("/:id/outputs", h.RecordCalcJobOutput)
	}

	processes := rg.Group("/processes")
	{
		processes.GET("", h.ListProcesses)
		processes.POST("", h.CreateProcess)
		processes.GET("/resumable", h.ListResumableProcesses)
		processes.GET("/:id", h.GetProcess)
		processes.POST("/:id/start", h.StartProcess)
		processes.PUT("/:id/state", h.SaveProcessState)
		processes.POST("/:id/inputs/buffer", h.BufferProcessInput)
		processes.POST("/:id/inputs/consume", h.ConsumeProcessInput)
		processes.POST("/:id/wait", h.WaitProcess)
		processes.POST("/:id/resume", h.ResumeProcess)
		processes.POST("/:id/outputs", h.EmitProcessOutput)
		processes.POST("/:id/returns", h.ReturnProcessOutput)
		processes.POST("/:id/finish", h.FinishProcess)
		processes.POST("/:id/fail", h.FailProcess)
	}

	inline := rg.Group("/inline")
	{
		inline.GET("/functions", h.ListInlineFunctions)
		inline.POST("/run", h.RunInline)
	}
}
