// Package deploy walks a manifest and carries out its entries.
//
// A Deployer loads a manifest, creates the destination root and visits the
// manifest tree depth first in document order. Sections create their
// destination directories; entries are turned into an Entry, filtered by
// their requisite and handed to the Resolver registered for their tag.
//
// Resolvers built on SourceResolver share the post-resolution rules: a
// missing source is a counted failure, a source that is itself a manifest
// is deployed recursively into the matching destination directory, and
// everything else is copied under the active overwrite policy.
package deploy
