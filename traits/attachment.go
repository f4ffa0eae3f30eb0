package traits

import (
	"context"

	"paratest/event"
	"paratest/issue"
	"paratest/trait"
)

// AttachmentSaver is the external collaborator that performs the actual
// file write for a value_attached event and returns the path it wrote
// to. File I/O is explicitly out of scope for this module (spec.md §1);
// AttachmentSavingTrait only guarantees the collaborator runs at the
// right point in the scope stack, once per attached value, before the
// event reaches anything installed outside this trait's scope.
type AttachmentSaver func(ctx context.Context, a issue.Attachment) (path string, err error)

// AttachmentSavingTrait intercepts KindValueAttached events within its
// scope, calls Saver, and rewrites the event's Attachment.Path with the
// result before forwarding.
type AttachmentSavingTrait struct {
	Saver AttachmentSaver
}

// NewAttachmentSavingTrait builds an AttachmentSavingTrait using saver.
func NewAttachmentSavingTrait(saver AttachmentSaver) AttachmentSavingTrait {
	return AttachmentSavingTrait{Saver: saver}
}

// ScopeProvider implements trait.Scoper.
func (a AttachmentSavingTrait) ScopeProvider(test *trait.TestDescriptor, tc *trait.TestCase) trait.ScopeProvider {
	return trait.ScopeProviderFunc(func(ctx context.Context, test *trait.TestDescriptor, tc *trait.TestCase, body func(context.Context) error) error {
		bus := event.Current(ctx).WithFrame(func(outer event.Handler) event.Handler {
			return func(ev event.Event) {
				if ev.Kind == event.KindValueAttached && a.Saver != nil {
					if att, ok := ev.Payload.(issue.Attachment); ok {
						if path, err := a.Saver(ctx, att); err == nil {
							att.Path = path
							ev.Payload = att
						}
					}
				}
				outer(ev)
			}
		})
		return body(event.Push(ctx, bus))
	})
}
