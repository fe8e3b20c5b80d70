package infrastructure

import (
	"context"

	"github.com/imamik/runway/internal/platform/gcloud"
	"github.com/imamik/runway/internal/provisioning"
)

// ensure runs check-then-create for ref, logs the outcome and records
// resources created by this run.
func ensure(ctx *provisioning.Context, stage string, ref gcloud.Ref, detail func(*gcloud.Resource) string, flags ...string) (*gcloud.Resource, error) {
	res, created, err := (&gcloud.EnsureOperation[*gcloud.Resource]{
		Name:         ref.Name,
		ResourceType: string(ref.Kind),
		Get: func(c context.Context) (*gcloud.Resource, error) {
			return ctx.Cloud.Describe(c, ref)
		},
		Create: func(c context.Context) error {
			provisioning.LogResourceCreating(ctx.Observer, stage, string(ref.Kind), ref.Name)
			return ctx.Cloud.Create(c, ref, flags...)
		},
	}).Execute(ctx)
	if err != nil {
		provisioning.LogResourceFailed(ctx.Observer, stage, string(ref.Kind), ref.Name, err)
		return nil, err
	}

	var d string
	if detail != nil {
		d = detail(res)
	}
	if created {
		ctx.State.RecordCreated(ref)
		provisioning.LogResourceCreated(ctx.Observer, stage, string(ref.Kind), ref.Name, d)
	} else {
		provisioning.LogResourceExists(ctx.Observer, stage, string(ref.Kind), ref.Name, d)
	}
	return res, nil
}

func address(r *gcloud.Resource) string { return r.Address }
