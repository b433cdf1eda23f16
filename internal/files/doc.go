// Package files finds attendance device exports on disk.
//
// When the configured input file is missing, the command uses Discovery to
// point the operator at the exports that are present:
//
//	discovery := files.NewDiscovery("")
//	found, err := discovery.FindDeviceExports(filepath.Dir(path), files.DeviceExportPatterns)
//	if latest, ok := files.GetLatestFile(found); ok {
//	    // suggest latest.Path
//	}
package files
