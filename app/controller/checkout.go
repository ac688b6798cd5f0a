package controller

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/go-donation-client/app/factory"
	"github.com/vibast-solutions/go-donation-client/app/mapper"
	"github.com/vibast-solutions/go-donation-client/app/provider"
	"github.com/vibast-solutions/go-donation-client/app/types"
)

type CheckoutController struct {
	sessions *provider.Sessions
	page     *template.Template
	logger   logrus.FieldLogger
}

func NewCheckoutController(sessions *provider.Sessions) *CheckoutController {
	return &CheckoutController{
		sessions: sessions,
		page:     template.Must(template.New("checkout").Parse(checkoutPage)),
		logger:   factory.NewModuleLogger("checkout-controller"),
	}
}

func (c *CheckoutController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &types.HealthResponse{Status: "ok", Sessions: c.sessions.Len()})
}

func (c *CheckoutController) Page(ctx echo.Context) error {
	session, err := c.sessions.Get(ctx.Param("session"))
	if err != nil {
		return c.writeError(ctx, http.StatusNotFound, "checkout session not found")
	}

	ctx.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	ctx.Response().WriteHeader(http.StatusOK)
	return c.page.Execute(ctx.Response(), checkoutPageData{
		Options:   session.Options,
		ResultURL: "/checkout/" + session.ID + "/result",
	})
}

func (c *CheckoutController) Result(ctx echo.Context) error {
	req, err := types.NewCheckoutResultRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	result := mapper.CheckoutResultFromRequest(req)
	if err := c.sessions.Deliver(req.Session, result); err != nil {
		switch {
		case errors.Is(err, provider.ErrSessionNotFound):
			return c.writeError(ctx, http.StatusNotFound, "checkout session not found")
		case errors.Is(err, provider.ErrSessionResolved):
			return c.writeError(ctx, http.StatusConflict, err.Error())
		default:
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Deliver checkout result failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	factory.LoggerWithContext(c.logger, ctx).WithFields(logrus.Fields{
		"session": req.Session,
		"outcome": result.Kind.String(),
	}).Info("Checkout result received")
	return ctx.JSON(http.StatusOK, &types.MessageResponse{Message: "You can close this window and return to the app."})
}

func (c *CheckoutController) writeError(ctx echo.Context, status int, message string) error {
	return ctx.JSON(status, &types.ErrorResponse{Error: message})
}

type checkoutPageData struct {
	Options   types.CheckoutOptions
	ResultURL string
}

const checkoutPage = `<!doctype html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Donation checkout</title>
<script src="https://checkout.razorpay.com/v1/checkout.js"></script>
</head>
<body>
<p id="status">Opening secure checkout...</p>
<script>
(function () {
  var options = {{.Options}};
  var resultURL = {{.ResultURL}};
  var lastError = null;
  var sent = false;

  function send(body, message) {
    if (sent) { return; }
    sent = true;
    document.getElementById("status").textContent = message;
    fetch(resultURL, {
      method: "POST",
      headers: {"Content-Type": "application/json"},
      body: JSON.stringify(body)
    });
  }

  options.handler = function (response) {
    send(response, "Payment received. You can close this window.");
  };
  options.modal = {
    ondismiss: function () {
      if (lastError) {
        send({error: lastError}, "Payment failed. You can close this window.");
        return;
      }
      send({error: {code: 0, description: "Payment cancelled by user"}}, "Payment cancelled. You can close this window.");
    }
  };

  var rzp = new Razorpay(options);
  rzp.on("payment.failed", function (response) {
    lastError = response.error;
    if (!options.retry || !options.retry.enabled) {
      send({error: response.error}, "Payment failed. You can close this window.");
    }
  });
  rzp.open();
})();
</script>
</body>
</html>
`
