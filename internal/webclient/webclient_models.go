package webclient

import "github.com/raysh454/rgaalint/internal/model"

type (
	Request  = model.Request
	Response = model.Response
)
