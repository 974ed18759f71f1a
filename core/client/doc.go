// Package client sits between LLM providers and the agents that use them.
// A [Client] carries the request defaults (model, system prompt, response
// format) and a send-middleware chain built from [WithMiddleware] and
// [WithObserver]. [SendAs] decodes structured replies through core/parse.
package client
