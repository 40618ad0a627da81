// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package transient classifies the errors returned by reqx pipelines so
that callers layering their own retry logic on top of a pipeline can tell
failures worth retrying from permanent ones.

The core classification function is Categorize.
*/
package transient
