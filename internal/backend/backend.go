package backend

import (
	"encoding/json"
	"fmt"
	"sort"

	"bedrockapp/internal/config"
)

type Auth struct {
	LoginWith         []string `json:"loginWith"`
	AuthenticatedRole string   `json:"authenticatedRole"`
	GuestRole         string   `json:"guestRole,omitempty"`
}

type Data struct {
	Name              string `json:"name"`
	Table             string `json:"table,omitempty"`
	AuthorizationMode string `json:"authorizationMode"`
}

type Storage struct {
	Name   string              `json:"name"`
	Bucket string              `json:"bucket,omitempty"`
	Access map[string][]string `json:"access"` // path prefix -> permissions
}

type Function struct {
	Name           string            `json:"name"`
	Handler        string            `json:"handler"`
	Runtime        string            `json:"runtime"`
	TimeoutSeconds int               `json:"timeoutSeconds"`
	MemoryMB       int               `json:"memoryMB"`
	Environment    map[string]string `json:"environment,omitempty"`
}

type PolicyStatement struct {
	Effect   string   `json:"Effect"`
	Action   []string `json:"Action"`
	Resource []string `json:"Resource"`
}

// Grant allows a role to invoke a function.
type Grant struct {
	Role     string `json:"role"`
	Function string `json:"function"`
}

// Backend is the declarative definition of the managed backend.
type Backend struct {
	Auth      Auth                         `json:"auth"`
	Data      Data                         `json:"data"`
	Storage   Storage                      `json:"storage"`
	Functions map[string]Function          `json:"functions"`
	Policies  map[string][]PolicyStatement `json:"policies"`
	Grants    []Grant                      `json:"grants"`
	Custom    map[string]string            `json:"custom"`
}

// Define builds the backend for the given configuration.
func Define(cfg config.Config) *Backend {
	fn := Function{
		Name:           cfg.FunctionName,
		Handler:        "bootstrap",
		Runtime:        "provided.al2023",
		TimeoutSeconds: 30,
		MemoryMB:       512,
		Environment: map[string]string{
			"BEDROCK_REGION":   cfg.Region,
			"BEDROCK_MODEL_ID": cfg.ModelID,
			"STAGE":            cfg.Stage,
		},
	}
	if cfg.AlertsTopicArn != "" {
		fn.Environment["ALERTS_TOPIC_ARN"] = cfg.AlertsTopicArn
	}

	b := &Backend{
		Auth: Auth{
			LoginWith:         []string{"email"},
			AuthenticatedRole: "authenticatedUserIamRole",
			GuestRole:         "unauthenticatedUserIamRole",
		},
		Data: Data{
			Name:              "data",
			Table:             cfg.DataTable,
			AuthorizationMode: "userPool",
		},
		Storage: Storage{
			Name:   "storage",
			Bucket: cfg.StorageBucket,
			Access: map[string][]string{
				"public/*":                {"read"},
				"private/{entity_id}/*":   {"read", "write", "delete"},
				"protected/{entity_id}/*": {"read", "write", "delete"},
			},
		},
		Functions: map[string]Function{fn.Name: fn},
		Policies:  map[string][]PolicyStatement{},
		Custom:    map[string]string{},
	}

	b.AddToRolePolicy(fn.Name, PolicyStatement{
		Effect:   "Allow",
		Action:   []string{"bedrock:InvokeModel", "bedrock:InvokeModelWithResponseStream"},
		Resource: []string{fmt.Sprintf("arn:aws:bedrock:%s::foundation-model/*", cfg.Region)},
	})
	if cfg.AlertsTopicArn != "" {
		b.AddToRolePolicy(fn.Name, PolicyStatement{
			Effect:   "Allow",
			Action:   []string{"sns:Publish"},
			Resource: []string{cfg.AlertsTopicArn},
		})
	}
	b.GrantInvoke(b.Auth.AuthenticatedRole, fn.Name)
	b.Custom["invokeBedrockFunctionName"] = fn.Name

	return b
}

func (b *Backend) AddToRolePolicy(function string, s PolicyStatement) {
	b.Policies[function] = append(b.Policies[function], s)
}

func (b *Backend) GrantInvoke(role, function string) {
	b.Grants = append(b.Grants, Grant{Role: role, Function: function})
}

type policyDocument struct {
	Version   string            `json:"Version"`
	Statement []PolicyStatement `json:"Statement"`
}

// PolicyDocument renders the IAM policy attached to a function's execution role.
func (b *Backend) PolicyDocument(function string) ([]byte, error) {
	stmts, ok := b.Policies[function]
	if !ok {
		return nil, fmt.Errorf("no policy for function %q", function)
	}
	return json.MarshalIndent(policyDocument{Version: "2012-10-17", Statement: stmts}, "", "  ")
}

// Outputs is what clients read to locate backend resources.
type Outputs struct {
	Version   string            `json:"version"`
	Auth      Auth              `json:"auth"`
	Data      Data              `json:"data"`
	Storage   Storage           `json:"storage"`
	Functions []string          `json:"functions"`
	Custom    map[string]string `json:"custom"`
}

func (b *Backend) Outputs() Outputs {
	names := make([]string, 0, len(b.Functions))
	for n := range b.Functions {
		names = append(names, n)
	}
	sort.Strings(names)

	return Outputs{
		Version:   "1",
		Auth:      b.Auth,
		Data:      b.Data,
		Storage:   b.Storage,
		Functions: names,
		Custom:    b.Custom,
	}
}
