// Package packages fetches NuGet packages for the "nuget" resolver tag.
//
// A Client talks to a v3 registry (service index or flat container), keeps
// an extracted copy of every package under a local packages directory laid
// out like the NuGet global packages folder, and resolves direct
// dependencies for the active target framework. Version lists, downloads
// and dependency sets are memoized per Client; concurrent requests for the
// same key share one fetch.
package packages
