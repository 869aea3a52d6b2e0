package server

import (
	"context"
	"net/http"

	"github.com/veesr/escrow/src/escrow"
	"github.com/veesr/escrow/src/server/request"
	"github.com/veesr/escrow/src/server/response"
	"github.com/veesr/escrow/src/utils/address"

	"github.com/gin-gonic/gin"
	"github.com/teivah/onecontext"
)

// Request context that is also cancelled when the server stops
func (self *Server) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return onecontext.Merge(c.Request.Context(), self.Ctx)
}

// bind parses the JSON body, empty bodies are allowed when optional
func (self *Server) bind(c *gin.Context, in interface{}, optional bool) bool {
	if optional && c.Request.ContentLength == 0 {
		return true
	}

	err := c.ShouldBindJSON(in)
	if err != nil {
		self.abortTransport(c, http.StatusBadRequest, "BadRequest", err)
		return false
	}
	return true
}

func (self *Server) addressParam(c *gin.Context) (out address.Identity, ok bool) {
	out, err := address.Parse(c.Param("address"))
	if err != nil {
		self.abortWithError(c, err)
		return
	}
	return out, true
}

func (self *Server) onCreateCampaign(c *gin.Context) {
	in := new(request.CreateCampaign)
	if !self.bind(c, in, false) {
		return
	}

	req, err := in.ToEngine()
	if err != nil {
		self.abortWithError(c, err)
		return
	}

	ctx, cancel := self.requestContext(c)
	defer cancel()

	out, err := self.engine.CreateCampaign(ctx, signer(c), req)
	if err != nil {
		self.abortWithError(c, err)
		return
	}

	self.respond(c, http.StatusCreated, out)
}

func (self *Server) onDonate(c *gin.Context) {
	campaign, ok := self.addressParam(c)
	if !ok {
		return
	}

	in := new(request.Donate)
	if !self.bind(c, in, false) {
		return
	}

	ctx, cancel := self.requestContext(c)
	defer cancel()

	out, err := self.engine.DonateToCampaign(ctx, signer(c), campaign, in.Amount)
	if err != nil {
		self.abortWithError(c, err)
		return
	}

	self.respond(c, http.StatusCreated, out)
}

func (self *Server) onWithdraw(c *gin.Context) {
	campaign, ok := self.addressParam(c)
	if !ok {
		return
	}

	in := new(request.Withdraw)
	if !self.bind(c, in, false) {
		return
	}

	ctx, cancel := self.requestContext(c)
	defer cancel()

	out, err := self.engine.WithdrawAndComplete(ctx, signer(c), &escrow.WithdrawRequest{
		Campaign:       campaign,
		Executor:       in.Executor,
		PlatformWallet: in.PlatformWallet,
	})
	if err != nil {
		self.abortWithError(c, err)
		return
	}

	self.respond(c, http.StatusOK, out)
}

func (self *Server) onCancel(c *gin.Context) {
	campaign, ok := self.addressParam(c)
	if !ok {
		return
	}

	ctx, cancel := self.requestContext(c)
	defer cancel()

	out, err := self.engine.CancelCampaign(ctx, signer(c), campaign)
	if err != nil {
		self.abortWithError(c, err)
		return
	}

	self.respond(c, http.StatusOK, out)
}

func (self *Server) onRefund(c *gin.Context) {
	campaign, ok := self.addressParam(c)
	if !ok {
		return
	}

	in := new(request.Refund)
	if !self.bind(c, in, true) {
		return
	}

	ctx, cancel := self.requestContext(c)
	defer cancel()

	out, err := self.engine.ClaimRefund(ctx, signer(c), campaign, in.ReceiptAddress())
	if err != nil {
		self.abortWithError(c, err)
		return
	}

	self.respond(c, http.StatusOK, out)
}

func (self *Server) onGetAccount(c *gin.Context) {
	addr, ok := self.addressParam(c)
	if !ok {
		return
	}

	ctx, cancel := self.requestContext(c)
	defer cancel()

	out, err := self.engine.Account(ctx, addr)
	if err != nil {
		self.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}

// Development only, mints lamports
func (self *Server) onAirdrop(c *gin.Context) {
	in := new(request.Airdrop)
	if !self.bind(c, in, false) {
		return
	}

	ctx, cancel := self.requestContext(c)
	defer cancel()

	err := self.engine.Airdrop(ctx, in.To, in.Lamports)
	if err != nil {
		self.abortWithError(c, err)
		return
	}

	balance, err := self.engine.Balance(ctx, in.To)
	if err != nil {
		self.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, &response.Airdrop{To: in.To, Lamports: balance})
}
